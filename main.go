package main

import "github.com/frahmantamala/grafana-sync/cmd"

func main() {
	cmd.Execute()
}

package internal_test

import (
	"os"
	"time"

	"github.com/frahmantamala/grafana-sync/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, http://localhost:5173",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			Driver:       "postgres",
			Source:       "postgres://localhost/sync",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Directory: internal.DirectoryConfig{Mode: internal.ModeLive, DSN: "postgres://localhost/opoppo"},
		Platform: internal.PlatformConfig{
			Mode:      internal.ModeLive,
			URL:       "http://localhost:3000",
			AdminUser: "admin",
		},
		Security: internal.SecurityConfig{
			JWTSecret:  "0123456789abcdef0123456789abcdef",
			TokenTTL:   time.Hour,
			BCryptCost: 10,
		},
	}
}

var _ = Describe("Config", func() {
	Describe("Validate", func() {
		It("accepts a complete live configuration", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("does not require connection details in mock mode", func() {
			cfg := validConfig()
			cfg.Directory = internal.DirectoryConfig{Mode: internal.ModeMock}
			cfg.Platform = internal.PlatformConfig{Mode: internal.ModeMock}
			Expect(cfg.Validate()).To(Succeed())
		})

		It("aggregates errors from every section", func() {
			cfg := validConfig()
			cfg.Database.Driver = "oracle"
			cfg.Platform.URL = "not a url"
			cfg.Security.JWTSecret = "short"

			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database config"))
			Expect(err.Error()).To(ContainSubstring("platform config"))
			Expect(err.Error()).To(ContainSubstring("security config"))
		})

		It("requires a directory dsn in live mode", func() {
			cfg := validConfig()
			cfg.Directory.DSN = ""
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("dsn is required")))
		})

		It("rejects more idle than open connections", func() {
			cfg := validConfig()
			cfg.Database.MaxIdleConns = 20
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
		})
	})

	Describe("ApplySettings", func() {
		It("overrides only the non-empty values", func() {
			cfg := validConfig()
			cfg.ApplySettings(map[string]string{
				internal.SettingPlatformURL:           "http://grafana:3000",
				internal.SettingPlatformAdminPassword: "s3cret",
				internal.SettingDirectoryDSN:          "",
			})

			Expect(cfg.Platform.URL).To(Equal("http://grafana:3000"))
			Expect(cfg.Platform.AdminPassword).To(Equal("s3cret"))
			Expect(cfg.Platform.AdminUser).To(Equal("admin"))
			Expect(cfg.Directory.DSN).To(Equal("postgres://localhost/opoppo"))
		})
	})

	Describe("Origins", func() {
		It("splits and trims the origin list", func() {
			cfg := validConfig()
			Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "http://localhost:5173"}))
		})

		It("defaults to any origin", func() {
			Expect((&internal.ServerConfig{}).Origins()).To(Equal([]string{"*"}))
		})
	})

	Describe("LoadConfigFromEnv", func() {
		var saved map[string]string

		set := func(key, value string) {
			if _, ok := saved[key]; !ok {
				old, _ := os.LookupEnv(key)
				saved[key] = old
			}
			Expect(os.Setenv(key, value)).To(Succeed())
		}

		BeforeEach(func() {
			saved = map[string]string{}
		})

		AfterEach(func() {
			for key, value := range saved {
				if value == "" {
					os.Unsetenv(key)
				} else {
					os.Setenv(key, value)
				}
			}
		})

		It("reads nested sections with their prefixes and applies defaults", func() {
			set("HTTP_PORT", "9090")
			set("DB_SOURCE", "postgres://db/sync")
			set("GRAFANA_URL", "http://grafana:3000")
			set("OPOPPO_MODE", "mock")
			set("SYNC_INTERVAL", "15m")

			cfg, err := internal.LoadConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Database.Source).To(Equal("postgres://db/sync"))
			Expect(cfg.Database.Driver).To(Equal("postgres"))
			Expect(cfg.Platform.URL).To(Equal("http://grafana:3000"))
			Expect(cfg.Platform.AdminUser).To(Equal("admin"))
			Expect(cfg.Directory.Mode).To(Equal(internal.ModeMock))
			Expect(cfg.Sync.Interval).To(Equal(15 * time.Minute))
			Expect(cfg.Security.TokenTTL).To(Equal(24 * time.Hour))
		})

		It("fails on malformed values", func() {
			set("HTTP_PORT", "not-a-number")
			_, err := internal.LoadConfigFromEnv()
			Expect(err).To(HaveOccurred())
		})
	})
})

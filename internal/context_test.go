package internal_test

import (
	"context"

	"github.com/frahmantamala/grafana-sync/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Operator context", func() {
	It("round-trips the authenticated operator", func() {
		ctx := internal.ContextWithOperator(context.Background(), internal.Operator{UserID: "1", Username: "admin"})
		Expect(internal.OperatorFromContext(ctx)).To(Equal(internal.Operator{UserID: "1", Username: "admin"}))
	})

	It("returns the zero operator when none is set", func() {
		Expect(internal.OperatorFromContext(context.Background())).To(BeZero())
	})
})

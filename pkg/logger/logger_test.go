package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/frahmantamala/grafana-sync/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("falls back to the process logger when the context carries none", func() {
		logger.Init("development", "info", "text")
		Expect(logger.From(context.Background())).To(BeIdenticalTo(logger.LoggerWrapper()))
	})

	It("stores a derived logger in the context", func() {
		ctx := logger.With(context.Background(), "trace_id", "abc")
		Expect(logger.From(ctx)).NotTo(BeIdenticalTo(logger.LoggerWrapper()))

		nested := logger.With(ctx, "run_id", "r1")
		Expect(logger.From(nested)).NotTo(BeIdenticalTo(logger.From(ctx)))
	})

	It("honours the configured level", func() {
		logger.Init("production", "warn", "json")
		Expect(logger.LoggerWrapper().Enabled(context.Background(), slog.LevelInfo)).To(BeFalse())
		Expect(logger.LoggerWrapper().Enabled(context.Background(), slog.LevelWarn)).To(BeTrue())

		logger.Init("development", "", "")
		Expect(logger.LoggerWrapper().Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
	})
})

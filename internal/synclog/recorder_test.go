package synclog_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	synclogDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/synclog"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	synclogPostgres "github.com/frahmantamala/grafana-sync/internal/synclog/postgres"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSyncLog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sync Log Suite")
}

type failingRepository struct{}

func (failingRepository) Create(ctx context.Context, l *synclogDatamodel.Log) error {
	return errors.New("disk full")
}

func (failingRepository) List(ctx context.Context, limit int) ([]*synclogDatamodel.Log, error) {
	return nil, errors.New("disk full")
}

func (failingRepository) Latest(ctx context.Context, logType string) (*synclogDatamodel.Log, error) {
	return nil, errors.New("disk full")
}

var _ = Describe("Recorder", func() {
	var (
		ctx      context.Context
		lg       *slog.Logger
		recorder *synclog.Recorder
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&synclogDatamodel.Log{})).To(Succeed())

		ctx = context.Background()
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		recorder = synclog.NewRecorder(synclogPostgres.NewSyncLogRepository(db), lg)
	})

	It("appends one row per call and keeps the details", func() {
		l, err := recorder.Record(ctx, synclog.TypeDirectoryToLocal, synclog.StatusSuccess, map[string]interface{}{"added": 1, "total": 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(l.ID).To(BeNumerically(">", 0))

		logs, err := recorder.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(1))
		Expect(logs[0].Succeeded()).To(BeTrue())
		Expect(logs[0].Details).To(HaveKeyWithValue("added", BeNumerically("==", 1)))
		Expect(logs[0].Details).To(HaveKeyWithValue("total", BeNumerically("==", 5)))
	})

	It("reads stored numbers back as plain Go numbers", func() {
		_, err := recorder.Record(ctx, synclog.TypeFullSync, synclog.StatusSuccess, map[string]interface{}{
			"orgs":     3,
			"ratio":    0.5,
			"per_org":  map[string]interface{}{"1": 2},
			"orphaned": []interface{}{7},
		})
		Expect(err).NotTo(HaveOccurred())

		latest, err := recorder.Latest(ctx, synclog.TypeFullSync)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Details["orgs"]).To(Equal(int64(3)))
		Expect(latest.Details["ratio"]).To(Equal(0.5))
		Expect(latest.Details["per_org"]).To(HaveKeyWithValue("1", int64(2)))
		Expect(latest.Details["orphaned"]).To(Equal([]interface{}{int64(7)}))
	})

	It("stores an empty object for nil details", func() {
		_, err := recorder.Record(ctx, synclog.TypeUsers, synclog.StatusSuccess, nil)
		Expect(err).NotTo(HaveOccurred())

		latest, err := recorder.Latest(ctx, synclog.TypeUsers)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Details).To(BeEmpty())
	})

	It("rejects unknown statuses and empty types", func() {
		_, err := recorder.Record(ctx, synclog.TypeUsers, "partial", nil)
		Expect(err).To(HaveOccurred())
		_, err = recorder.Record(ctx, "", synclog.StatusSuccess, nil)
		Expect(err).To(HaveOccurred())
	})

	It("lists newest first with a limit", func() {
		for _, t := range []string{synclog.TypeOrganizations, synclog.TypeUsers, synclog.TypeTeams} {
			_, err := recorder.Record(ctx, t, synclog.StatusSuccess, nil)
			Expect(err).NotTo(HaveOccurred())
		}

		logs, err := recorder.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(2))
		Expect(logs[0].Type).To(Equal(synclog.TypeTeams))
		Expect(logs[1].Type).To(Equal(synclog.TypeUsers))
	})

	It("returns the latest log by type or overall", func() {
		_, err := recorder.Record(ctx, synclog.TypeFullSync, synclog.StatusError, map[string]interface{}{"error": "boom"})
		Expect(err).NotTo(HaveOccurred())
		_, err = recorder.Record(ctx, synclog.TypeDirectoryToLocal, synclog.StatusSuccess, nil)
		Expect(err).NotTo(HaveOccurred())

		latest, err := recorder.Latest(ctx, synclog.TypeFullSync)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Status).To(Equal(synclog.StatusError))
		Expect(latest.Details).To(HaveKeyWithValue("error", "boom"))

		latest, err = recorder.Latest(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Type).To(Equal(synclog.TypeDirectoryToLocal))

		none, err := recorder.Latest(ctx, synclog.TypeTeams)
		Expect(err).NotTo(HaveOccurred())
		Expect(none).To(BeNil())
	})

	It("surfaces repository failures", func() {
		failing := synclog.NewRecorder(failingRepository{}, lg)
		_, err := failing.Record(ctx, synclog.TypeUsers, synclog.StatusSuccess, nil)
		Expect(err).To(MatchError(ContainSubstring("disk full")))
	})

	Describe("Handler", func() {
		It("serves the logs with a query limit", func() {
			for i := 0; i < 3; i++ {
				_, err := recorder.Record(ctx, synclog.TypeOrganizations, synclog.StatusSuccess, nil)
				Expect(err).NotTo(HaveOccurred())
			}
			h := synclog.NewHandler(transport.NewBaseHandler(lg), recorder)

			rec := httptest.NewRecorder()
			h.ListLogs(rec, httptest.NewRequest(http.MethodGet, "/sync/logs?limit=2", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var logs []synclog.Log
			Expect(json.Unmarshal(rec.Body.Bytes(), &logs)).To(Succeed())
			Expect(logs).To(HaveLen(2))
		})

		It("rejects a malformed limit", func() {
			h := synclog.NewHandler(transport.NewBaseHandler(lg), recorder)
			rec := httptest.NewRecorder()
			h.ListLogs(rec, httptest.NewRequest(http.MethodGet, "/sync/logs?limit=abc", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

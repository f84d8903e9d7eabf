package auditlog_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	auditPostgres "github.com/frahmantamala/wbs-tracker/internal/auditlog/postgres"
	auditDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/auditlog"
	"github.com/frahmantamala/wbs-tracker/internal/core/events"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuditLog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Log Suite")
}

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, entry *auditDatamodel.LogEntry) error {
	return errors.New("relation wbs_logs does not exist")
}

func (failingRepo) ListRecent(ctx context.Context) ([]*auditDatamodel.LogEntry, error) {
	return nil, errors.New("relation wbs_logs does not exist")
}

func failures(reg *prometheus.Registry) float64 {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, mf := range families {
		if mf.GetName() == "wbs_audit_write_failures_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

var _ = Describe("Audit sink", func() {
	var (
		db      *gorm.DB
		bus     *events.EventBus
		reg     *prometheus.Registry
		service *auditlog.Service
		lg      *slog.Logger
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&auditDatamodel.LogEntry{})).To(Succeed())

		bus = events.NewEventBus(lg)
		reg = prometheus.NewRegistry()
		service = auditlog.NewService(auditPostgres.NewAuditLogRepository(db), bus, lg, metrics.New(reg))
	})

	It("appends recorded entries in the background", func() {
		service.Record(ctx, "u-1", "Added project: Website", "p-1", auditlog.ItemProject, auditlog.StatusSuccess, "")

		Eventually(func() int64 {
			var n int64
			db.Model(&auditDatamodel.LogEntry{}).Count(&n)
			return n
		}).Should(Equal(int64(1)))

		entries, err := service.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries[0].Action).To(Equal("Added project: Website"))
		Expect(*entries[0].UserID).To(Equal("u-1"))
		Expect(entries[0].Status).To(Equal(auditlog.StatusSuccess))
	})

	It("stores anonymous actions with a null user", func() {
		service.Record(ctx, "", "Login attempt", "", "", auditlog.StatusFailure, "bad password")
		Expect(bus.Drain(ctx)).To(Succeed())

		entries, err := service.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].UserID).To(BeNil())
	})

	It("still writes when the caller's context is already cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		service.Record(cctx, "u-1", "Updated progress", "t-1", auditlog.ItemTask, auditlog.StatusSuccess, "")
		Expect(bus.Drain(ctx)).To(Succeed())

		entries, err := service.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("lists newest entries first", func() {
		old := time.Now().Add(-time.Hour)
		Expect(db.Create(&auditDatamodel.LogEntry{Action: "older", Status: "success", CreatedAt: old}).Error).To(Succeed())
		Expect(db.Create(&auditDatamodel.LogEntry{Action: "newer", Status: "success", CreatedAt: old.Add(time.Minute)}).Error).To(Succeed())

		entries, err := service.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries[0].Action).To(Equal("newer"))
		Expect(entries[1].Action).To(Equal("older"))
	})

	It("swallows write failures and counts them", func() {
		failReg := prometheus.NewRegistry()
		broken := auditlog.NewService(failingRepo{}, nil, lg, metrics.New(failReg))
		Expect(func() {
			broken.Record(ctx, "u-1", "Added task: X", "t-1", auditlog.ItemTask, auditlog.StatusSuccess, "")
		}).NotTo(Panic())
		Expect(failures(failReg)).To(Equal(1.0))
	})

	Describe("GET /api/logs", func() {
		It("returns the entries wrapped in logs", func() {
			service.Record(ctx, "u-1", "Assigned task", "t-1", auditlog.ItemTask, auditlog.StatusSuccess, "")
			service.Record(ctx, "u-1", "Added project: Apollo", "p-1", auditlog.ItemProject, auditlog.StatusSuccess, "")
			Expect(bus.Drain(ctx)).To(Succeed())

			handler := auditlog.NewHandler(transport.NewBaseHandler(lg), service)
			w := httptest.NewRecorder()
			handler.GetLogs(w, httptest.NewRequest(http.MethodGet, "/api/logs?q=apollo", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp auditlog.LogsResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Logs).To(HaveLen(1))
			Expect(resp.Logs[0].ItemID).To(Equal("p-1"))
		})

		It("reports a blank filter in a header", func() {
			handler := auditlog.NewHandler(transport.NewBaseHandler(lg), service)
			w := httptest.NewRecorder()
			handler.GetLogs(w, httptest.NewRequest(http.MethodGet, "/api/logs?q=%20", nil))
			Expect(w.Header().Get(transport.FilterNoticeHeader)).To(Equal("Please enter a search term."))
		})

		It("maps repository errors to 500", func() {
			handler := auditlog.NewHandler(transport.NewBaseHandler(lg), auditlog.NewService(failingRepo{}, nil, lg, nil))
			w := httptest.NewRecorder()
			handler.GetLogs(w, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})

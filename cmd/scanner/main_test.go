package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ravushimo/gunsmoke-scanner/internal/config"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.Rows = config.DefaultRows(1920, 1080)
	cfg.Export.Dir = "unused"
	return cfg
}

func TestNewService(t *testing.T) {
	Convey("Given a loaded configuration", t, func() {
		cfg := testConfig()

		Convey("The service carries its settings", func() {
			svc := newService(cfg, nil, nil)
			stats := svc.GetStats()

			So(stats["started"], ShouldBeFalse)
			So(stats["workerCount"], ShouldEqual, cfg.Capture.WorkerCount)
			So(stats["duplicateWindow"], ShouldEqual, cfg.Validation.MaxDuplicateCheck)
			So(svc.Layout(), ShouldResemble, cfg.Layout())
		})
	})
}

func TestRoutes(t *testing.T) {
	Convey("Given the scanner routes", t, func() {
		ctx := context.Background()
		svc := newService(testConfig(), nil, nil)
		mux := routes(ctx, svc)

		get := func(path string) int {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec.Code
		}

		Convey("API and docs endpoints are mounted", func() {
			So(get("/healthz"), ShouldEqual, http.StatusOK)
			So(get("/stats"), ShouldEqual, http.StatusOK)
			So(get("/records"), ShouldEqual, http.StatusOK)
			So(get("/season"), ShouldEqual, http.StatusOK)
			So(get("/openapi.yaml"), ShouldEqual, http.StatusOK)
		})

		Convey("Service metrics refresh from stats without panicking", func() {
			So(func() { updateServiceMetrics(svc) }, ShouldNotPanic)
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given a metrics config", t, func() {
		Reset(func() { metrics.Init() })

		cfg := testConfig()
		cfg.Metrics.Namespace = "guild"
		cfg.Metrics.Prefix = "night"
		cfg.Metrics.Buckets = []float64{10, 100}

		Convey("The health endpoint serves collectors named from it", func() {
			metrics.Init(metricsOptions(cfg.Metrics)...)
			mux := routes(context.Background(), newService(cfg, nil, nil))
			metrics.UpdateBufferSize(3)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "guild_scanner_night_buffer_records 3")
		})
	})
}

func TestFileExists(t *testing.T) {
	Convey("fileExists reports missing paths", t, func() {
		So(fileExists(filepath.Join(t.TempDir(), "nope.yaml")), ShouldBeFalse)
		So(fileExists(t.TempDir()), ShouldBeTrue)
	})
}

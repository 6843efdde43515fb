package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/export"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/http/api"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/mq/queue"
	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/repository"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/pipeline"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	captureErr error
	last       *pipeline.Report
	records    []model.PlayerRecord
	saveErr    error
	period     season.Period
}

func (m *mockDependencies) RequestCapture(_ context.Context) (model.CaptureJob, error) {
	if m.captureErr != nil {
		return model.CaptureJob{}, m.captureErr
	}
	return model.CaptureJob{ID: "job-1", Season: 17, Requested: time.Unix(0, 0).UTC()}, nil
}

func (m *mockDependencies) LastReport() (pipeline.Report, bool) {
	if m.last == nil {
		return pipeline.Report{}, false
	}
	return *m.last, true
}

func (m *mockDependencies) Records(_ context.Context) []model.PlayerRecord {
	return append([]model.PlayerRecord(nil), m.records...)
}

func (m *mockDependencies) UpdateRecord(_ context.Context, index int, r model.PlayerRecord) error {
	if err := repository.Validate(r); err != nil {
		return err
	}
	if index >= len(m.records) {
		return repository.ErrNotFound
	}
	m.records[index] = r
	return nil
}

func (m *mockDependencies) ClearRecords(_ context.Context) int {
	n := len(m.records)
	m.records = nil
	return n
}

func (m *mockDependencies) Export(_ context.Context) []model.RankedRecord {
	return repository.Rank(m.records)
}

func (m *mockDependencies) WriteCSV(ctx context.Context, w io.Writer) error {
	return export.WriteCSV(w, m.Export(ctx), "")
}

func (m *mockDependencies) SaveExport(_ context.Context) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	if len(m.records) == 0 {
		return "", export.ErrEmpty
	}
	return "results/Gunsmoke_Season17_20251201_120000.csv", nil
}

func (m *mockDependencies) Season() season.Period { return m.period }

func (m *mockDependencies) SetSeason(number int) (season.Period, error) {
	if number < 1 {
		return season.Period{}, season.ErrInvalidSeason
	}
	m.period = season.Period{Number: number, Phase: season.PhaseActive, Manual: true}
	return m.period, nil
}

func (m *mockDependencies) ClearSeason() season.Period {
	m.period = season.Period{Number: 17, Phase: season.PhaseActive}
	return m.period
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"records": 2}}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var resp struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Code
}

func records() []model.PlayerRecord {
	return []model.PlayerRecord{
		{Season: 17, IGN: "Alpha", TopScore: 3420, TotalScore: 80000},
		{Season: 17, IGN: "Bravo", TopScore: 2100, TotalScore: 98000},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then health should expose metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats should be served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"records":2`)
		})

		Convey("Then wrong methods should be refused", func() {
			So(do(mux, http.MethodGet, "/capture", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/records", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPatch, "/season", "").Header().Get("Allow"), ShouldEqual, "GET, PUT, DELETE")
		})
	})
}

func TestCaptureHandler(t *testing.T) {
	Convey("Given the capture endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the capture is accepted", func() {
			w := do(mux, http.MethodPost, "/capture", "")

			Convey("Then it should answer 202 with the job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"id":"job-1"`)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
			})
		})

		Convey("When a cycle is already in flight", func() {
			deps.captureErr = pipeline.ErrBusy
			w := do(mux, http.MethodPost, "/capture", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "busy")
		})

		Convey("When the season is on break and captures require an active season", func() {
			deps.captureErr = pipeline.ErrSeasonInactive
			w := do(mux, http.MethodPost, "/capture", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "season_inactive")
		})

		Convey("When the queue is full", func() {
			deps.captureErr = queue.ErrFull
			w := do(mux, http.MethodPost, "/capture", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "backpressure")
		})

		Convey("When the queue is closed", func() {
			deps.captureErr = queue.ErrClosed
			So(do(mux, http.MethodPost, "/capture", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When an unexpected error occurs", func() {
			deps.captureErr = errors.New("boom")
			So(do(mux, http.MethodPost, "/capture", "").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When no cycle has run yet", func() {
			So(do(mux, http.MethodGet, "/captures/last", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a cycle report exists", func() {
			deps.last = &pipeline.Report{ID: "job-1", Season: 17, Rows: []pipeline.RowResult{
				{Row: 3, Status: pipeline.RowCaptureFailed, Field: "single_high"},
			}}
			w := do(mux, http.MethodGet, "/captures/last", "")

			Convey("Then the row outcomes should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep pipeline.Report
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.Rows[0].Status, ShouldEqual, pipeline.RowCaptureFailed)
				So(rep.Rows[0].Field, ShouldEqual, "single_high")
			})
		})
	})
}

func TestRecordsHandler(t *testing.T) {
	Convey("Given a buffer with two records", t, func() {
		deps := &mockDependencies{records: records()}
		mux := newMux(deps)

		Convey("When listing records", func() {
			w := do(mux, http.MethodGet, "/records", "")

			Convey("Then they should come back in capture order with indexes", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Count   int `json:"count"`
					Records []struct {
						Index int    `json:"index"`
						IGN   string `json:"ign"`
					} `json:"records"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Count, ShouldEqual, 2)
				So(resp.Records[1].Index, ShouldEqual, 1)
				So(resp.Records[1].IGN, ShouldEqual, "Bravo")
			})
		})

		Convey("When editing a record", func() {
			w := do(mux, http.MethodPut, "/records/0", `{"season":17,"ign":" Alpha2 ","topscore":1,"totalscore":2}`)

			Convey("Then the record should be replaced", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.records[0].IGN, ShouldEqual, "Alpha2")
				So(deps.records[0].TotalScore, ShouldEqual, 2)
			})
		})

		Convey("When editing with bad input", func() {
			So(do(mux, http.MethodPut, "/records/x", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, "/records/0", `{`).Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodPut, "/records/0", `{"season":0,"ign":"A"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_record")
			w = do(mux, http.MethodPut, "/records/0", `{"season":17,"ign":"al pha!!"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_record")
			So(do(mux, http.MethodPut, "/records/5", `{"season":17,"ign":"A"}`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When clearing the buffer", func() {
			w := do(mux, http.MethodDelete, "/records", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"removed":2`)
			So(deps.records, ShouldBeEmpty)
		})
	})
}

func TestExportHandler(t *testing.T) {
	Convey("Given a buffer with two records", t, func() {
		deps := &mockDependencies{records: records()}
		mux := newMux(deps)

		Convey("When requesting the JSON snapshot", func() {
			w := do(mux, http.MethodGet, "/export", "")

			Convey("Then rows should be ranked by total score", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []model.RankedRecord
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[0].IGN, ShouldEqual, "Bravo")
				So(rows[1].IGN, ShouldEqual, "Alpha")
			})
		})

		Convey("When requesting the CSV snapshot", func() {
			w := do(mux, http.MethodGet, "/export?format=csv", "")

			Convey("Then a BOM-prefixed CSV attachment should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				So(w.Header().Get("Content-Disposition"), ShouldStartWith, "attachment;")
				body := w.Body.Bytes()
				So(bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), ShouldBeTrue)
				So(string(body), ShouldContainSubstring, "1,17,Bravo,2100,98000")
			})
		})

		Convey("When requesting an unknown format", func() {
			So(do(mux, http.MethodGet, "/export?format=xml", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When saving the snapshot to disk", func() {
			w := do(mux, http.MethodPost, "/export", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldContainSubstring, "Gunsmoke_Season17_")
		})

		Convey("When saving an empty buffer", func() {
			deps.records = nil
			w := do(mux, http.MethodPost, "/export", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "empty_buffer")
		})

		Convey("When saving fails", func() {
			deps.saveErr = errors.New("disk full")
			So(do(mux, http.MethodPost, "/export", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestSeasonHandler(t *testing.T) {
	Convey("Given the season endpoint", t, func() {
		deps := &mockDependencies{period: season.Period{Number: 17, Phase: season.PhaseBreak}}
		mux := newMux(deps)

		Convey("When reading the season", func() {
			w := do(mux, http.MethodGet, "/season", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"phase":"break"`)
		})

		Convey("When overriding the season", func() {
			w := do(mux, http.MethodPut, "/season", `{"number":19}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"manual":true`)
			So(deps.period.Number, ShouldEqual, 19)
		})

		Convey("When overriding with an invalid number", func() {
			w := do(mux, http.MethodPut, "/season", `{"number":0}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_season")
			So(do(mux, http.MethodPut, "/season", `nope`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When clearing the override", func() {
			w := do(mux, http.MethodDelete, "/season", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"number":17`)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("decode failed")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause should match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: decode failed")
			So(errors.Is(api.NewKind("api.op", api.ErrBackpressure), api.ErrBackpressure), ShouldBeTrue)
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}

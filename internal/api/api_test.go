package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/persistence"
	"github.com/deepsafe/safetext-go/internal/wordlist"
)

const testRequestID = "9b4f6c5d-1a32-4d8f-b5a6-23c9e1f7d2a1"

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

func newTestAPI(t *testing.T, opts ...Option) *API {
	t.Helper()
	store, err := wordlist.NewStore()
	require.NoError(t, err)
	api, err := New("safetext-test", store, nil, opts...)
	require.NoError(t, err)
	return api
}

func doJSON(t *testing.T, api *API, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Request-Id", testRequestID)
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, req)
	return rr
}

func TestAPI_checkText(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/check", CheckRequest{
		Language: "en",
		Text:     "well damn, that was rude",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp CheckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "en", resp.Language)
	assert.True(t, resp.ContainsProfanity)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "damn", resp.Matches[0].Term)
	assert.Equal(t, 1, resp.Matches[0].WordIndex)
}

func TestAPI_checkTextClean(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/check", CheckRequest{
		Language: "en",
		Text:     "a perfectly polite sentence",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp CheckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.ContainsProfanity)
	assert.Empty(t, resp.Matches)
}

func TestAPI_checkTextDetectsLanguage(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/check", CheckRequest{
		Text: "this is a piece of shit sentence",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp CheckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "en", resp.Language)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "piece of shit", resp.Matches[0].Term)
}

func TestAPI_checkTextUnsupportedLanguage(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/check", CheckRequest{
		Language: "xx",
		Text:     "whatever",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_checkTextBadBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/check", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Request-Id", testRequestID)
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_censorText(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/censor", CensorRequest{
		Language: "en",
		Text:     "well damn, that was rude",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp CensorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "well ***, that was rude", resp.Censored)
	require.Len(t, resp.Matches, 1)
}

func TestAPI_detectLanguage(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/detect", DetectRequest{
		Text: "this is a perfectly normal english sentence",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DetectResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "en", resp.Language)
}

func TestAPI_detectLanguageFails(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodPost, "/detect", DetectRequest{Text: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

type stubReports struct {
	reports []persistence.Report
	err     error
}

func (s *stubReports) ListReports(_ context.Context, _ int) ([]persistence.Report, error) {
	return s.reports, s.err
}

func TestAPI_listReports(t *testing.T) {
	stub := &stubReports{reports: []persistence.Report{{
		ID:           1,
		SubtitleFile: "/media/show.srt",
		Language:     "en",
		MatchCount:   2,
		Terms:        []string{"damn"},
		CreatedAt:    time.Now().UTC(),
	}}}
	api := newTestAPI(t, WithReports(stub))

	rr := doJSON(t, api, http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ReportsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "/media/show.srt", resp.Reports[0].SubtitleFile)
}

func TestAPI_listReportsNotConfigured(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_listReportsBadLimit(t *testing.T) {
	api := newTestAPI(t, WithReports(&stubReports{}))

	rr := doJSON(t, api, http.MethodGet, "/reports?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_listJobs(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	queue.Enqueue("/media/show.srt")
	api := newTestAPI(t, WithQueue(queue))

	rr := doJSON(t, api, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp JobsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "/media/show.srt", resp.Jobs[0].SubtitleFile)
	assert.Equal(t, jobs.StatusPending, resp.Jobs[0].Status)
}

func TestAPI_status(t *testing.T) {
	lastScan := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	api := newTestAPI(t, WithSchedule("0 * * * *", func() time.Time { return lastScan }))

	rr := doJSON(t, api, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `"code":"en"`)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "safetext-test", resp.Service)
	assert.NotEmpty(t, resp.Languages)
	require.NotNil(t, resp.Schedule)
	assert.Equal(t, "0 * * * *", resp.Schedule.Expression)
	assert.Equal(t, lastScan, resp.Schedule.LastScan)
	assert.False(t, resp.Schedule.NextScan.IsZero())
}

func TestAPI_healthz(t *testing.T) {
	api := newTestAPI(t)

	rr := doJSON(t, api, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPI_generatesRequestID(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	api.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

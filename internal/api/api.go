// Package api exposes the profanity engine over HTTP: ad-hoc check, censor,
// and detect endpoints plus read access to screening reports and jobs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/deepsafe/safetext-go/internal/detect"
	"github.com/deepsafe/safetext-go/internal/jobs"
	"github.com/deepsafe/safetext-go/internal/persistence"
	"github.com/deepsafe/safetext-go/internal/profanity"
	"github.com/deepsafe/safetext-go/internal/wordlist"
	"github.com/deepsafe/safetext-go/pkg/icron"
)

// ReportLister reads stored screening reports.
type ReportLister interface {
	ListReports(ctx context.Context, limit int) ([]persistence.Report, error)
}

type API struct {
	ServiceName string

	r        *mux.Router
	kw       *kafka.Writer
	store    *wordlist.Store
	detector *detect.Detector

	reports  ReportLister
	queue    *jobs.Queue
	cronExpr string
	lastScan func() time.Time
}

type Option func(*API)

// WithReports enables the GET /reports endpoint.
func WithReports(reports ReportLister) Option {
	return func(api *API) { api.reports = reports }
}

// WithQueue enables the GET /jobs endpoint.
func WithQueue(queue *jobs.Queue) Option {
	return func(api *API) { api.queue = queue }
}

// WithSchedule adds library scan timing to GET /status. lastScan may be nil.
func WithSchedule(cronExpr string, lastScan func() time.Time) Option {
	return func(api *API) {
		api.cronExpr = cronExpr
		api.lastScan = lastScan
	}
}

// New builds the HTTP API. kafkaWriter may be nil to disable access logging.
func New(name string, store *wordlist.Store, kafkaWriter *kafka.Writer, opts ...Option) (*API, error) {
	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		kw:          kafkaWriter,
		store:       store,
		detector:    detect.New(store),
	}
	for _, opt := range opts {
		opt(&api)
	}
	api.endpoints()

	return &api, nil
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	api.r.HandleFunc("/check", api.checkText).Methods(http.MethodPost)
	api.r.HandleFunc("/censor", api.censorText).Methods(http.MethodPost)
	api.r.HandleFunc("/detect", api.detectLanguage).Methods(http.MethodPost)
	api.r.HandleFunc("/reports", api.listReports).Methods(http.MethodGet)
	api.r.HandleFunc("/jobs", api.listJobs).Methods(http.MethodGet)
	api.r.HandleFunc("/status", api.status).Methods(http.MethodGet)
	api.r.HandleFunc("/healthz", api.healthz).Methods(http.MethodGet)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}
}

func (api *API) checkText(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		log.Errorf("[checkText][%s] failed to decode request body: %v", shorten(reqID), err)
		return
	}
	defer r.Body.Close()

	checker, lang, ok := api.checkerFor(w, reqID, req.Language, req.Text)
	if !ok {
		return
	}

	matches := checker.Check(req.Text)
	writeJSON(w, http.StatusOK, CheckResponse{
		Language:          lang,
		ContainsProfanity: len(matches) > 0,
		Matches:           matches,
	})
}

func (api *API) censorText(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	var req CensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		log.Errorf("[censorText][%s] failed to decode request body: %v", shorten(reqID), err)
		return
	}
	defer r.Body.Close()

	checker, lang, ok := api.checkerFor(w, reqID, req.Language, req.Text)
	if !ok {
		return
	}

	matches := checker.Check(req.Text)
	writeJSON(w, http.StatusOK, CensorResponse{
		Language: lang,
		Censored: profanity.CensorText(req.Text, matches),
		Matches:  matches,
	})
}

func (api *API) detectLanguage(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		log.Errorf("[detectLanguage][%s] failed to decode request body: %v", shorten(reqID), err)
		return
	}
	defer r.Body.Close()

	lang, err := api.detector.FromText(req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, DetectResponse{Language: lang})
}

func (api *API) listReports(w http.ResponseWriter, r *http.Request) {
	if api.reports == nil {
		writeError(w, http.StatusNotFound, errors.New("report storage is not configured"))
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	reports, err := api.reports.ListReports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		log.Errorf("[listReports][%s] failed to list reports: %v", shorten(GetRequestID(r.Context())), err)
		return
	}
	if reports == nil {
		reports = []persistence.Report{}
	}
	writeJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

func (api *API) listJobs(w http.ResponseWriter, r *http.Request) {
	if api.queue == nil {
		writeError(w, http.StatusNotFound, errors.New("screening queue is not configured"))
		return
	}

	list := api.queue.List()
	if list == nil {
		list = []*jobs.ScreenJob{}
	}
	writeJSON(w, http.StatusOK, JobsResponse{Jobs: list})
}

func (api *API) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Service:   api.ServiceName,
		Languages: api.store.Languages(),
	}

	if api.cronExpr != "" {
		info, err := icron.NextTrigger(api.cronExpr, time.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		sched := &ScheduleStatus{
			Expression:    api.cronExpr,
			NextScan:      info.Next,
			UntilNextScan: info.UntilNext.String(),
		}
		if api.lastScan != nil {
			sched.LastScan = api.lastScan()
		}
		resp.Schedule = sched
	}

	writeJSON(w, http.StatusOK, resp)
}

func (api *API) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkerFor resolves the request language and loads the matching word list.
// On failure it writes the error response and returns ok=false.
func (api *API) checkerFor(w http.ResponseWriter, reqID, language, text string) (*profanity.Checker, string, bool) {
	lang := language
	if lang == "" {
		detected, err := api.detector.FromText(text)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return nil, "", false
		}
		lang = detected
	}

	vocab, err := api.store.Load(lang)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, wordlist.ErrUnsupportedLanguage) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		log.Errorf("[checkerFor][%s] failed to load word list for %q: %v", shorten(reqID), lang, err)
		return nil, "", false
	}
	return profanity.NewChecker(vocab), vocab.Code, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[writeJSON] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// shorten truncates a string to 6 characters if it is longer than 6, appends
// '...' at the end, otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}

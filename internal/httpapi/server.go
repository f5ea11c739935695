package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kwhalen/doorboard/internal/doorboard/service"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

// maxScanBody caps the ingest request body. A scan event encodes to well
// under 1 KiB of JSON, so 4 KiB is generous.
const maxScanBody = 4096

type Dependencies struct {
	Logger     zerolog.Logger
	Addr       string
	Aggregator *service.Aggregator
	Feed       *service.FeedService
	Visibility *service.VisibilityResolver
	Display    DisplayConfig
}

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	aggregator *service.Aggregator
	feed       *service.FeedService
	visibility *service.VisibilityResolver
	display    DisplayConfig
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:     d.Logger,
		aggregator: d.Aggregator,
		feed:       d.Feed,
		visibility: d.Visibility,
		display:    d.Display,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(httpMetrics)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Get("/presence", s.handleFeedAll)
		r.Get("/presence/{group}", s.handleFeedFiltered)
		r.Get("/presence/{group}/{door}", s.handleFeedFiltered)
	})

	r.Get("/display/{code}", s.handleDisplay)
	r.Get("/display/{code}/{group}", s.handleDisplay)
	r.Get("/display/{code}/{group}/{door}", s.handleDisplay)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req types.ScanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	outcome, err := s.aggregator.RecordScan(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserID):
			writeError(w, http.StatusBadRequest, "invalid_user_id", err.Error())
		case errors.Is(err, service.ErrInvalidDoor):
			writeError(w, http.StatusBadRequest, "invalid_door", err.Error())
		case errors.Is(err, service.ErrInvalidTimestamp):
			writeError(w, http.StatusBadRequest, "invalid_ts", err.Error())
		default:
			s.logger.Error().Err(err).Int64("uid", req.UserID).Msg("scan ingest failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	scansTotal.WithLabelValues(req.Door, string(outcome)).Inc()

	writeJSON(w, http.StatusOK, types.ScanResponse{
		OK:         true,
		Outcome:    string(outcome),
		UserID:     req.UserID,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleFeedAll serves the always-on ticker: ascending, no visibility
// filtering.
func (s *Server) handleFeedAll(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, service.FeedParams{
		After:      parseCursor(r.URL.Query().Get("after")),
		Limit:      parseLimit(r.URL.Query().Get("limit")),
		Descending: false,
	})
}

// handleFeedFiltered serves the permission-scoped kiosk feed: descending,
// group-filtered, optionally restricted to one door.
func (s *Server) handleFeedFiltered(w http.ResponseWriter, r *http.Request) {
	visible, err := s.visibility.ResolveVisibleUsers(r.Context(), chi.URLParam(r, "group"))
	if err != nil {
		s.logger.Error().Err(err).Msg("visibility resolution failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	s.serveFeed(w, r, service.FeedParams{
		After:      parseCursor(r.URL.Query().Get("after")),
		Limit:      parseLimit(r.URL.Query().Get("limit")),
		Door:       chi.URLParam(r, "door"),
		Visible:    visible,
		Descending: true,
	})
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, p service.FeedParams) {
	resp, err := s.feed.Query(r.Context(), p)
	if err != nil {
		s.logger.Error().Err(err).Msg("feed query failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, resp)
}

// parseCursor reads the "after" cursor. Malformed or negative values fall
// back to 0 (everything); the kiosk must never see an error page over a
// mangled query string.
func parseCursor(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseLimit reads the "limit" parameter. Absent or malformed values yield
// 0, which the feed service replaces with its default; explicit values are
// clamped to at least 1 here and to the maximum by the service.
func parseLimit(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	if n < 1 {
		return 1
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

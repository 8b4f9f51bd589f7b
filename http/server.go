package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/export"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout is how long in-flight requests get to finish on shutdown.
const ShutdownTimeout = 5 * time.Second

// Server exposes keyword search and snapshot downloads over HTTP.
type Server struct {
	router  chi.Router
	gateway serpdump.ArtifactGateway
	search  serpdump.SearchService
	logger  *slog.Logger
	metrics http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a Server. A nil search service disables POST /search.
func NewServer(gateway serpdump.ArtifactGateway, search serpdump.SearchService, opts ...ServerOption) *Server {
	s := &Server{
		gateway: gateway,
		search:  search,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/download/{format}", s.handleDownload)
	if s.search != nil {
		r.Post("/search", s.handleSearch)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format, err := serpdump.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, "file does not exist", http.StatusNotFound)
		return
	}

	artifact, err := s.gateway.Fetch(r.Context(), format)
	if serpdump.ErrorCode(err) == serpdump.ENOTFOUND {
		http.Error(w, "file does not exist", http.StatusNotFound)
		return
	} else if err != nil {
		s.logger.Error("download failed", "format", format, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	hash := artifact.Hash
	if hash == "" {
		hash = export.Hash(artifact.Content)
	}
	etag := `"` + hash + `"`
	w.Header().Set("ETag", etag)
	if !artifact.WrittenAt.IsZero() {
		w.Header().Set("Last-Modified", artifact.WrittenAt.UTC().Format(http.TimeFormat))
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename=`+format.Filename())
	_, _ = w.Write(artifact.Content)
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

type searchResponse struct {
	Keyword  string             `json:"keyword"`
	Count    int                `json:"count"`
	Records  []serpdump.Record  `json:"records"`
	Snapshot *serpdump.Snapshot `json:"snapshot,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var keyword string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, searchResponse{Error: "invalid request body"})
			return
		}
		keyword = req.Keyword
	} else {
		keyword = r.FormValue("keyword")
	}

	result, err := s.search.Search(r.Context(), keyword)
	if err != nil {
		resp := searchResponse{Keyword: keyword, Records: []serpdump.Record{}, Error: serpdump.ErrorMessage(err)}
		if result != nil {
			resp.Records = result.Records
			resp.Count = len(result.Records)
			resp.Snapshot = result.Snapshot
		}
		status := statusCode(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("search failed", "keyword", keyword, "err", err)
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Keyword:  result.Keyword,
		Count:    len(result.Records),
		Records:  result.Records,
		Snapshot: result.Snapshot,
	})
}

// statusCode maps an application error code to an HTTP status.
func statusCode(err error) int {
	switch serpdump.ErrorCode(err) {
	case serpdump.EINVALID:
		return http.StatusBadRequest
	case serpdump.ENOTFOUND, serpdump.ENOMATCH:
		return http.StatusNotFound
	case serpdump.EUNAVAILABLE:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"blogsearch/internal/logger"
	"blogsearch/internal/middleware"
	"blogsearch/internal/render"
	"blogsearch/internal/route"
	"blogsearch/internal/search"
	"blogsearch/internal/view"
)

const DefaultTimeout = 10 * time.Second

type Server struct {
	Log      *logrus.Logger
	Searcher search.Searcher
	Render   *render.Renderer
	// Timeout bounds one page render including the upstream call
	Timeout time.Duration
}

// Routes mounts the page routes, the JSON API and the ops endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.Log), middleware.RequestLogger(s.Log))

	r.Get(route.Root, s.Page)
	r.Get(route.SearchPrefix+"{keyword}", s.Page)
	r.Get("/submit", s.Submit)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS)
		r.Get("/search", s.APISearch)
	})

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// GET / and GET /search/{keyword}
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	escaped := r.URL.EscapedPath()
	keyword, ok := route.KeywordFromPath(escaped)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if canonical := route.PathFor(keyword); canonical != escaped {
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout())
	defer cancel()
	defer logger.Track(ctx, "page "+route.PathFor(keyword))()

	v := view.New(s.Searcher, view.WithLogger(s.Log))
	defer v.Close()

	status := http.StatusOK
	if err := v.Navigate(ctx, keyword); err != nil {
		logger.For(ctx).WithError(err).WithField("keyword", keyword).Error("search.failed")
		status = http.StatusBadGateway
	}

	var buf bytes.Buffer
	if err := s.Render.Page(&buf, v.Snapshot()); err != nil {
		logger.For(ctx).WithError(err).Error("render.failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// GET /submit?query=... is the form action behind the Enter key: the draft
// text becomes a navigation to its keyword path.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	v := view.New(s.Searcher, view.WithNavigator(func(path string) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}))
	v.SetText(r.URL.Query().Get("query"))
	v.Submit()
}

type apiResponse struct {
	Keyword string            `json:"keyword"`
	Status  string            `json:"status"`
	Meta    search.Meta       `json:"meta"`
	Results []render.ItemView `json:"results"`
}

// GET /api/search?query=...
func (s *Server) APISearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout())
	defer cancel()

	v := view.New(s.Searcher, view.WithLogger(s.Log))
	defer v.Close()

	if err := v.Navigate(ctx, r.URL.Query().Get("query")); err != nil {
		logger.For(ctx).WithError(err).Error("search.failed")

		status, code := http.StatusBadGateway, "upstream_error"
		if errors.Is(err, context.DeadlineExceeded) {
			status, code = http.StatusGatewayTimeout, "timeout"
		}
		var te *search.TransportError
		if errors.As(err, &te) && te.Status != 0 {
			WriteError(w, status, code, "search failed", map[string]any{"upstream_status": te.Status})
			return
		}
		WriteError(w, status, code, "search failed", nil)
		return
	}

	st := v.Snapshot()
	writeJSON(w, http.StatusOK, apiResponse{
		Keyword: st.Keyword,
		Status:  st.Status.String(),
		Meta:    st.Meta,
		Results: s.Render.Views(st.Results),
	})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/charts"
)

//go:embed index.html
var indexHTML string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard page, JSON API and charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           newServer(a, logger).routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("serving dashboard", zap.String("url", "http://"+cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "http listen address")
}

type server struct {
	app    *dashboardApp
	logger *zap.Logger
}

func newServer(a *dashboardApp, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{app: a, logger: logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/franchise", s.handleFranchise)
	mux.HandleFunc("GET /api/region", s.handleRegion)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/aggregate", s.handleAggregate)
	mux.HandleFunc("GET /api/charts/{name}", s.handleChart)
	return s.logRequests(mux)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, s.app.options(charts.Names))
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, s.app.computeReport(q, false))
}

func (s *server) handleFranchise(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	v := s.app.view(q)
	s.respondJSON(w, struct {
		Fallback bool                     `json:"fallback"`
		Region   string                   `json:"region"`
		Detail   analysis.FranchiseDetail `json:"detail"`
	}{
		Fallback: v.Fallback,
		Region:   q.Region.Name,
		Detail:   analysis.DescribeFranchise(v.Table, q.Franchise, q.Region.Column, s.app.franchises),
	})
}

func (s *server) handleRegion(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	v := s.app.view(q)
	s.respondJSON(w, struct {
		Fallback  bool                     `json:"fallback"`
		DrillDown analysis.RegionDrillDown `json:"drill_down"`
	}{
		Fallback:  v.Fallback,
		DrillDown: analysis.DrillDown(v.Table, compareGenre(v, q), q.Compare, s.app.regions),
	})
}

func (s *server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, s.app.computeSeries(q))
}

func (s *server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	values := r.URL.Query()
	req, err := parseAggregate(values.Get("op"), values.Get("key"), values.Get("column"), values.Get("n"), q.Region.Column)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.respondJSON(w, s.app.aggregate(q, req))
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, found := strings.CutSuffix(r.PathValue("name"), ".png")
	if !found {
		http.NotFound(w, r)
		return
	}
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	c, err := s.app.buildChart(name, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(&buf, c, charts.DefaultWidth, charts.DefaultHeight); err != nil {
		s.logger.Error("render chart", zap.String("chart", name), zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// query parses the selection from the URL; on bad input it writes a 400.
func (s *server) query(w http.ResponseWriter, r *http.Request) (query, bool) {
	raw, err := parseQuery(r.URL.Query())
	if err == nil {
		var q query
		q, err = s.app.resolve(raw)
		if err == nil {
			return q, true
		}
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
	return query{}, false
}

func parseQuery(values url.Values) (rawQuery, error) {
	raw := rawQuery{
		Region:    values.Get("region"),
		Platforms: listParam(values, "platform"),
		Genres:    listParam(values, "genre"),
		Genre:     values.Get("compare_genre"),
		Compare:   values.Get("compare_region"),
		Franchise: values.Get("franchise"),
	}
	for _, y := range listParam(values, "year") {
		year, err := strconv.Atoi(y)
		if err != nil {
			return rawQuery{}, fmt.Errorf("invalid year: %q", y)
		}
		raw.Years = append(raw.Years, year)
	}
	return raw, nil
}

// listParam accepts both repeated keys and comma-separated values.
func listParam(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *server) respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		s.logger.Error("encode response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusBadRequest {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

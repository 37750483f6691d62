// Package api serves a thermal session over HTTP: JSON frames, layout
// selection, playback control and echarts pages.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/thermal.report/internal/httputil"
	"github.com/banshee-data/thermal.report/internal/monitoring"
	"github.com/banshee-data/thermal.report/internal/render"
	"github.com/banshee-data/thermal.report/internal/security"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/timeutil"
	"github.com/banshee-data/thermal.report/internal/units"
)

const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server exposes one session and its player.
type Server struct {
	session *thermal.Session
	player  *thermal.Player
	units   string
	vmin    float64
	vmax    float64
}

// Config holds the dependencies and display settings of a Server.
type Config struct {
	Session *thermal.Session
	Player  *thermal.Player
	// Units is the default temperature unit for JSON readouts.
	Units string
	// VMin and VMax bound the heatmap colour scale in °C.
	VMin, VMax float64
}

// NewServer returns a server over cfg.Session. A player is created when
// cfg.Player is nil.
func NewServer(cfg Config) *Server {
	s := &Server{
		session: cfg.Session,
		player:  cfg.Player,
		units:   cfg.Units,
		vmin:    cfg.VMin,
		vmax:    cfg.VMax,
	}
	if s.player == nil {
		s.player = thermal.NewPlayer(cfg.Session, thermal.PlayerOptions{})
	}
	if !units.IsValid(s.units) {
		s.units = units.Celsius
	}
	return s
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, request URI, status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return ClockedLoggingMiddleware(timeutil.RealClock{}, next)
}

// ClockedLoggingMiddleware is LoggingMiddleware timed by clock.
func ClockedLoggingMiddleware(clock timeutil.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/layouts", s.handleLayouts)
	mux.HandleFunc("/api/layout", s.handleSetLayout)
	mux.HandleFunc("/api/player", s.handlePlayer)
	mux.HandleFunc("/api/warnings", s.handleWarnings)
	mux.HandleFunc("/charts/frame", s.handleFrameChart)
	mux.HandleFunc("/charts/trend.png", s.handleTrendPlot)
	return mux
}

// requestUnits returns the units query value or the server default.
func (s *Server) requestUnits(r *http.Request) (string, error) {
	u := strings.ToLower(r.URL.Query().Get("units"))
	if u == "" {
		return s.units, nil
	}
	if !units.IsValid(u) {
		return "", fmt.Errorf("invalid units %q, must be one of: %s", u, units.GetValidUnitsString())
	}
	return u, nil
}

// frameAt returns the frame for the t query value, or the current frame when
// t is absent. It never moves the session's time index.
func (s *Server) frameAt(r *http.Request) (thermal.FrameResult, error) {
	if r.URL.Query().Get("t") == "" {
		return s.session.Current(), nil
	}
	t, err := httputil.IntParam(r, "t", 0)
	if err != nil {
		return thermal.FrameResult{}, err
	}
	return s.session.Frame(t), nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	u, err := s.requestUnits(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	f, err := s.frameAt(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, s.newFrameDTO(f, u))
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	available := []string{}
	if store := s.session.Store(); store != nil {
		names, err := store.Names()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		available = names
	}
	httputil.WriteJSONOK(w, layoutsResponse{Active: s.session.Layout().Name, Available: available})
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		httputil.BadRequest(w, "name is required")
		return
	}

	rl, err := s.session.SetLayout(name)
	resp := layoutResponse{
		Requested: name,
		Active:    rl.Name,
		Applied:   err == nil,
		Warnings:  newWarningDTOs(rl.Warnings),
	}
	if err == nil {
		httputil.WriteJSONOK(w, resp)
		return
	}

	resp.Error = err.Error()
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, security.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, thermal.ErrLayoutNotFound):
		status = http.StatusNotFound
	case errors.Is(err, thermal.ErrLayoutMalformed):
		status = http.StatusUnprocessableEntity
	}
	httputil.WriteJSON(w, status, resp)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	u, err := s.requestUnits(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var f thermal.FrameResult
	switch action := r.FormValue("action"); action {
	case "play":
		s.player.Play()
		f = s.session.Current()
	case "pause":
		s.player.Pause()
		f = s.session.Current()
	case "toggle":
		s.player.Toggle()
		f = s.session.Current()
	case "forward":
		f = s.player.Forward()
	case "rewind":
		f = s.player.Rewind()
	case "peak":
		f = s.player.SeekPeak()
	case "seek":
		if r.FormValue("t") == "" {
			httputil.BadRequest(w, "t is required for seek")
			return
		}
		t, err := httputil.IntParam(r, "t", 0)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		f = s.player.Seek(t)
	default:
		httputil.BadRequest(w, fmt.Sprintf("unknown action %q", action))
		return
	}
	httputil.WriteJSONOK(w, s.newFrameDTO(f, u))
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	rl := s.session.Layout()
	httputil.WriteJSONOK(w, warningsResponse{Layout: rl.Name, Warnings: newWarningDTOs(rl.Warnings)})
}

func (s *Server) handleFrameChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	f, err := s.frameAt(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	o := render.PageOptions{Layout: f.Layout, VMin: s.vmin, VMax: s.vmax}
	if err := render.FramePage(&buf, f, o); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTrendPlot draws the trends up to t, or over the whole recording when
// t is absent.
func (s *Server) handleTrendPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	t, err := httputil.IntParam(r, "t", s.session.Len()-1)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	f := s.session.Frame(t)

	var buf bytes.Buffer
	title := fmt.Sprintf("%s t=0..%d", f.Layout, f.TimeIndex)
	err = render.WriteTrendPNG(&buf, title, render.TrendSeries{CellRange: f.CellRangeTrend, LayerMeanRange: f.LayerMeanRangeTrend})
	if errors.Is(err, render.ErrNoTrendData) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lineup-sim/models"
	"lineup-sim/optimizer"
	"lineup-sim/simulation"
)

// Server wires the HTTP surface to the simulation engine and the
// optimizer.
type Server struct {
	config     *ServerConfig
	log        *logrus.Logger
	router     *mux.Router
	httpServer *http.Server

	simDefaults simulation.Config
	engine      *simulation.Engine
	store       *simulation.PGReportStore

	optMu   sync.RWMutex
	optRuns map[string]*optimizeRun
}

// optimizeRun tracks one background optimization search.
type optimizeRun struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	StartTime time.Time         `json:"start_time"`
	Error     string            `json:"error,omitempty"`
	Result    *optimizer.Result `json:"result,omitempty"`
	cancel    context.CancelFunc
}

// NewServer builds the server, connecting the report store when
// DATABASE_URL is configured.
func NewServer(config *ServerConfig, log *logrus.Logger) (*Server, error) {
	simDefaults, err := config.SimulationDefaults()
	if err != nil {
		return nil, err
	}

	var store *simulation.PGReportStore
	if config.DatabaseURL != "" {
		store, err = simulation.NewPGReportStore(context.Background(), config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("report store connected")
	} else {
		log.Info("no DATABASE_URL configured, running without report persistence")
	}

	var reportStore simulation.ReportStore
	if store != nil {
		reportStore = store
	}

	s := &Server{
		config:      config,
		log:         log,
		router:      mux.NewRouter(),
		simDefaults: simDefaults,
		engine:      simulation.NewEngine(log, reportStore),
		store:       store,
		optRuns:     make(map[string]*optimizeRun),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.HandleFunc("/simulate", s.simulateHandler).Methods("POST")
	s.router.HandleFunc("/simulation/{id}/status", s.simulationStatusHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/result", s.simulationResultHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/cancel", s.simulationCancelHandler).Methods("POST")

	s.router.HandleFunc("/optimize", s.optimizeHandler).Methods("POST")
	s.router.HandleFunc("/optimize/{id}", s.optimizeStatusHandler).Methods("GET")
	s.router.HandleFunc("/optimize/{id}/cancel", s.optimizeCancelHandler).Methods("POST")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.WithFields(logrus.Fields{
		"port":    s.config.Port,
		"workers": s.config.Workers,
	}).Info("starting lineup simulation service")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down lineup simulation service")
	if s.store != nil {
		defer s.store.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handlers

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "healthy",
		"time":    time.Now().UTC(),
		"workers": s.config.Workers,
	}
	s.writeJSON(w, health)
}

// SimulateRequest starts a batch run. Config is a partial override of the
// server's simulation defaults; absent fields keep their default values.
type SimulateRequest struct {
	Lineup []models.PlayerStats `json:"lineup"`
	Config json.RawMessage      `json:"config,omitempty"`
}

// SimulateResponse acknowledges a started batch run.
type SimulateResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Seasons   int       `json:"seasons"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := s.simDefaults
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			http.Error(w, "Invalid config overrides: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	lineup, err := models.BuildLineup(req.Lineup, cfg.Calibration)
	if err != nil {
		http.Error(w, "Invalid lineup: "+err.Error(), http.StatusBadRequest)
		return
	}

	runID, err := s.engine.StartRun(lineup, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, SimulateResponse{
		RunID:     runID,
		Status:    "started",
		Seasons:   cfg.Simulations,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Server) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	status, ok := s.engine.GetStatus(runID)
	if !ok {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, status)
}

func (s *Server) simulationResultHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if report, ok := s.engine.GetReport(runID); ok {
		s.writeJSON(w, report)
		return
	}

	// In-memory miss: the run may predate this process. Fall back to the
	// store when one is configured.
	if s.store != nil {
		report, err := s.store.GetReport(r.Context(), runID)
		if err == nil {
			s.writeJSON(w, report)
			return
		}
	}

	if status, ok := s.engine.GetStatus(runID); ok {
		http.Error(w, "Simulation not complete, state: "+string(status.State), http.StatusConflict)
		return
	}
	http.Error(w, "Simulation not found", http.StatusNotFound)
}

func (s *Server) simulationCancelHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if !s.engine.CancelRun(runID) {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]string{"run_id": runID, "status": "cancel_requested"})
}

// OptimizeRequest starts a lineup-order search over the given roster.
// Params and Config are partial overrides of the defaults.
type OptimizeRequest struct {
	Roster []models.PlayerStats `json:"roster"`
	Params json.RawMessage      `json:"params,omitempty"`
	Config json.RawMessage      `json:"config,omitempty"`
}

func (s *Server) optimizeHandler(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := s.simDefaults
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			http.Error(w, "Invalid config overrides: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	params := optimizer.DefaultParams()
	params.Seed = cfg.Seed
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			http.Error(w, "Invalid optimizer params: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	roster := make([]*models.PlayerProfile, 0, len(req.Roster))
	for _, stats := range req.Roster {
		profile, err := models.NewPlayerProfile(stats, cfg.Calibration)
		if err != nil {
			http.Error(w, "Invalid roster: "+err.Error(), http.StatusBadRequest)
			return
		}
		roster = append(roster, profile)
	}

	opt, err := optimizer.New(roster, cfg, params, s.log)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &optimizeRun{
		ID:        uuid.New().String(),
		Status:    "running",
		StartTime: time.Now().UTC(),
		cancel:    cancel,
	}
	s.optMu.Lock()
	s.optRuns[run.ID] = run
	s.optMu.Unlock()

	go func() {
		defer cancel()
		result, err := opt.Optimize(ctx)

		s.optMu.Lock()
		defer s.optMu.Unlock()
		switch {
		case errors.Is(err, context.Canceled):
			run.Status = "cancelled"
		case err != nil:
			run.Status = "error"
			run.Error = err.Error()
			s.log.WithField("optimize_id", run.ID).WithError(err).Error("optimization failed")
		default:
			run.Status = "completed"
			run.Result = result
		}
	}()

	s.writeJSON(w, map[string]string{"optimize_id": run.ID, "status": "started"})
}

func (s *Server) optimizeStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.optMu.RLock()
	run, ok := s.optRuns[id]
	s.optMu.RUnlock()
	if !ok {
		http.Error(w, "Optimization not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, run)
}

func (s *Server) optimizeCancelHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.optMu.RLock()
	run, ok := s.optRuns[id]
	s.optMu.RUnlock()
	if !ok {
		http.Error(w, "Optimization not found", http.StatusNotFound)
		return
	}
	run.cancel()
	s.writeJSON(w, map[string]string{"optimize_id": id, "status": "cancel_requested"})
}

// Middleware

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.RequestURI,
			"status":   lrw.statusCode,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.WithField("panic", err).Error("recovered from handler panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func main() {
	config, err := LoadServerConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := config.NewLogger()

	server, err := NewServer(config, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create server")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Fatal("server shutdown failed")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed to start")
	}
}

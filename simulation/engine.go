package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lineup-sim/models"
)

// RunState is the lifecycle state of an asynchronous batch run.
type RunState string

const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunCancelled RunState = "cancelled"
	RunErrored   RunState = "error"
)

// RunStatus is a point-in-time snapshot of a batch run's progress.
type RunStatus struct {
	RunID            string     `json:"run_id"`
	State            RunState   `json:"state"`
	TotalSeasons     int        `json:"total_seasons"`
	CompletedSeasons int        `json:"completed_seasons"`
	StartTime        time.Time  `json:"start_time"`
	CompletedTime    *time.Time `json:"completed_time,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// ReportStore persists completed batch reports. Implementations must be
// safe for concurrent use.
type ReportStore interface {
	SaveReport(ctx context.Context, runID string, report *BatchReport) error
}

type runEntry struct {
	status RunStatus
	report *BatchReport
	cancel context.CancelFunc
}

// Engine manages asynchronous batch runs. Each run executes in its own
// goroutine; status and results are queried by run ID. A nil store is
// valid and skips persistence.
type Engine struct {
	log   *logrus.Logger
	store ReportStore

	mu   sync.RWMutex
	runs map[string]*runEntry
}

// NewEngine creates an engine with the given logger and optional report
// store.
func NewEngine(log *logrus.Logger, store ReportStore) *Engine {
	return &Engine{
		log:   log,
		store: store,
		runs:  make(map[string]*runEntry),
	}
}

// StartRun validates the inputs, registers a new run and launches it in
// the background. Validation failures surface here synchronously; runtime
// failures surface through the run's status.
func (e *Engine) StartRun(lineup models.Lineup, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("run configuration: %w", err)
	}
	if len(lineup) != models.LineupSize {
		return "", fmt.Errorf("run lineup: got %d players, need %d", len(lineup), models.LineupSize)
	}

	runID := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.runs[runID] = &runEntry{
		status: RunStatus{
			RunID:        runID,
			State:        RunPending,
			TotalSeasons: cfg.Simulations,
			StartTime:    time.Now(),
		},
		cancel: cancel,
	}
	e.mu.Unlock()

	go e.execute(ctx, runID, lineup, cfg)

	e.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"seasons": cfg.Simulations,
		"seed":    cfg.Seed,
		"workers": cfg.Workers,
	}).Info("batch run started")

	return runID, nil
}

func (e *Engine) execute(ctx context.Context, runID string, lineup models.Lineup, cfg Config) {
	e.setState(runID, RunRunning, "")

	progress := func(completed, total int) {
		e.mu.Lock()
		if entry, ok := e.runs[runID]; ok {
			entry.status.CompletedSeasons = completed
		}
		e.mu.Unlock()
	}

	report, err := RunBatch(ctx, lineup, cfg, progress)
	now := time.Now()

	e.mu.Lock()
	entry, ok := e.runs[runID]
	if !ok {
		e.mu.Unlock()
		return
	}
	entry.status.CompletedTime = &now
	duration := now.Sub(entry.status.StartTime)
	switch {
	case err != nil:
		entry.status.State = RunErrored
		entry.status.Error = err.Error()
	case report.Cancelled():
		entry.status.State = RunCancelled
	default:
		entry.status.State = RunCompleted
		entry.status.CompletedSeasons = cfg.Simulations
		entry.report = report
	}
	e.mu.Unlock()

	if err != nil {
		e.log.WithField("run_id", runID).WithError(err).Error("batch run failed")
		return
	}
	if report.Cancelled() {
		e.log.WithField("run_id", runID).Info("batch run cancelled")
		return
	}

	e.log.WithFields(logrus.Fields{
		"run_id":   runID,
		"seasons":  cfg.Simulations,
		"duration": duration.String(),
	}).Info("batch run completed")

	if e.store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if serr := e.store.SaveReport(saveCtx, runID, report); serr != nil {
			e.log.WithField("run_id", runID).WithError(serr).Warn("failed to persist report")
		}
	}
}

func (e *Engine) setState(runID string, state RunState, errMsg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.runs[runID]; ok {
		entry.status.State = state
		entry.status.Error = errMsg
	}
}

// GetStatus returns the current status snapshot for a run.
func (e *Engine) GetStatus(runID string) (RunStatus, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.runs[runID]
	if !ok {
		return RunStatus{}, false
	}
	return entry.status, true
}

// GetReport returns the completed report for a run. The second return is
// false while the run is still in flight or if it did not complete.
func (e *Engine) GetReport(runID string) (*BatchReport, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.runs[runID]
	if !ok || entry.report == nil {
		return nil, false
	}
	return entry.report, true
}

// CancelRun requests cooperative cancellation of a run. Returns false if
// the run ID is unknown.
func (e *Engine) CancelRun(runID string) bool {
	e.mu.RLock()
	entry, ok := e.runs[runID]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	entry.cancel()
	return true
}

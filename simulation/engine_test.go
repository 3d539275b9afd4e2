package simulation

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestEngineRunLifecycle(t *testing.T) {
	engine := NewEngine(testLogger(), nil)
	lineup := testLineup(t)
	cfg := smallConfig()

	runID, err := engine.StartRun(lineup, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	status, ok := engine.GetStatus(runID)
	require.True(t, ok)
	assert.Equal(t, cfg.Simulations, status.TotalSeasons)

	require.Eventually(t, func() bool {
		status, _ := engine.GetStatus(runID)
		return status.State == RunCompleted
	}, 30*time.Second, 10*time.Millisecond)

	status, _ = engine.GetStatus(runID)
	assert.Equal(t, cfg.Simulations, status.CompletedSeasons)
	require.NotNil(t, status.CompletedTime)
	assert.False(t, status.CompletedTime.Before(status.StartTime))

	report, ok := engine.GetReport(runID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, report.Status)
	assert.Len(t, report.RawData.SeasonRuns, cfg.Simulations)
}

func TestEngineRejectsInvalidRun(t *testing.T) {
	engine := NewEngine(testLogger(), nil)
	lineup := testLineup(t)

	cfg := smallConfig()
	cfg.Simulations = -1
	_, err := engine.StartRun(lineup, cfg)
	assert.Error(t, err)

	_, err = engine.StartRun(lineup[:3], smallConfig())
	assert.Error(t, err)
}

func TestEngineCancelRun(t *testing.T) {
	engine := NewEngine(testLogger(), nil)
	lineup := testLineup(t)

	cfg := smallConfig()
	cfg.Simulations = 200000
	cfg.ProgressInterval = 10

	runID, err := engine.StartRun(lineup, cfg)
	require.NoError(t, err)

	require.True(t, engine.CancelRun(runID))

	require.Eventually(t, func() bool {
		status, _ := engine.GetStatus(runID)
		return status.State == RunCancelled
	}, 30*time.Second, 10*time.Millisecond)

	_, ok := engine.GetReport(runID)
	assert.False(t, ok, "a cancelled run has no report")
}

func TestEngineUnknownRun(t *testing.T) {
	engine := NewEngine(testLogger(), nil)

	_, ok := engine.GetStatus("not-a-run")
	assert.False(t, ok)
	_, ok = engine.GetReport("not-a-run")
	assert.False(t, ok)
	assert.False(t, engine.CancelRun("not-a-run"))
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineup-sim/models"
	"lineup-sim/simulation"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	config := &ServerConfig{
		Port:        "0",
		LogLevel:    "panic",
		Workers:     1,
		Simulations: 20,
	}
	server, err := NewServer(config, config.NewLogger())
	require.NoError(t, err)
	server.log.SetOutput(io.Discard)
	// Keep request-driven runs small and fast.
	server.simDefaults.GamesPerSeason = 4
	server.simDefaults.InningsPerGame = 3
	return server
}

func requestLineup() []models.PlayerStats {
	lineup := make([]models.PlayerStats, models.LineupSize)
	for i := range lineup {
		ba := 0.240 + 0.005*float64(i)
		lineup[i] = models.PlayerStats{
			Name: fmt.Sprintf("Batter %d", i+1),
			BA:   ba,
			OBP:  ba + 0.070,
			SLG:  ba + 0.140,
			PA:   600,
		}
	}
	return lineup
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSimulateFlow(t *testing.T) {
	server := testServer(t)

	payload, err := json.Marshal(SimulateRequest{Lineup: requestLineup()})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/simulate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)
	assert.Equal(t, "started", resp.Status)
	assert.Equal(t, 20, resp.Seasons)

	// Poll the status endpoint until the run completes.
	require.Eventually(t, func() bool {
		req := httptest.NewRequest("GET", "/simulation/"+resp.RunID+"/status", nil)
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		var status simulation.RunStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.State == simulation.RunCompleted
	}, 30*time.Second, 10*time.Millisecond)

	req = httptest.NewRequest("GET", "/simulation/"+resp.RunID+"/result", nil)
	rec = httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report simulation.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, simulation.StatusCompleted, report.Status)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 20, report.Summary.Simulations)
}

func TestSimulateConfigOverride(t *testing.T) {
	server := testServer(t)

	payload := []byte(`{"lineup":` + mustJSON(requestLineup()) + `,"config":{"simulations":5,"seed":7}}`)
	req := httptest.NewRequest("POST", "/simulate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Seasons)
}

func TestSimulateRejectsBadLineup(t *testing.T) {
	server := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"empty lineup", `{"lineup":[]}`},
		{"invalid stats", `{"lineup":[{"name":"X","ba":0.4,"obp":0.2,"slg":0.5,"pa":500}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/simulate", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			server.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSimulationNotFound(t *testing.T) {
	server := testServer(t)

	for _, path := range []string{
		"/simulation/unknown/status",
		"/simulation/unknown/result",
	} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	req := httptest.NewRequest("POST", "/simulation/unknown/cancel", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimizeFlow(t *testing.T) {
	server := testServer(t)

	roster := requestLineup()
	extra := models.PlayerStats{Name: "Bench", BA: 0.230, OBP: 0.300, SLG: 0.360, PA: 400}
	roster = append(roster, extra, extra, extra)

	payload := []byte(`{"roster":` + mustJSON(roster) +
		`,"params":{"population_size":6,"generations":2,"no_improvement_stop":2,"initial_sims":2,"final_sims":2},"config":{"games_per_season":2,"innings_per_game":2}}`)
	req := httptest.NewRequest("POST", "/optimize", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id := resp["optimize_id"]
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		req := httptest.NewRequest("GET", "/optimize/"+id, nil)
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)
		var run optimizeRun
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			return false
		}
		return run.Status == "completed"
	}, 60*time.Second, 10*time.Millisecond)

	req = httptest.NewRequest("GET", "/optimize/"+id, nil)
	rec = httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	var run optimizeRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Best.Order, models.LineupSize)
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

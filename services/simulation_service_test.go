package services

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"stattact-service/tactics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedResult struct {
	user, name, outcome string
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []recordedResult
}

func (f *fakeRecorder) RecordResult(_ context.Context, user, name, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, recordedResult{user, name, outcome})
	return nil
}

func TestSimulate_RecordsSignedInResults(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewSimulationService(tactics.NewSource(11), nil, rec, nil)

	res, err := svc.Simulate(context.Background(), "user-1", "coach", "Arsenal", "Chelsea")
	require.NoError(t, err)
	require.Len(t, rec.results, 1)
	assert.Equal(t, recordedResult{"user-1", "coach", res.Outcome()}, rec.results[0])

	_, err = svc.Simulate(context.Background(), "", "", "Arsenal", "Chelsea")
	require.NoError(t, err)
	assert.Len(t, rec.results, 1, "anonymous plays are not ranked")
}

func TestSimulate_RequiresBothTeams(t *testing.T) {
	svc := NewSimulationService(tactics.NewSource(1), nil, nil, nil)
	_, err := svc.Simulate(context.Background(), "", "", "Arsenal", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSimulateMatchRoute(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewSimulationService(tactics.NewSource(5), NewProgressTracker(newTestScheduler(t), nil), rec, nil)
	app := newTestApp()
	app.Post("/simulations", svc.SimulateMatch)

	req := httptest.NewRequest("POST", "/simulations", strings.NewReader(`{"team":"Arsenal","opponent":"Chelsea"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Owner", "user-9")
	req.Header.Set("X-Test-User", "user-9")
	req.Header.Set("X-Test-Email", "gaffer@example.com")
	resp, body := doRequest(t, app, req)
	require.Equal(t, 200, resp.StatusCode, body)

	var out SimulationResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, 100, out.Stats.Possession.Team+out.Stats.Possession.Opponent)
	assert.NotEmpty(t, out.ProgressID)
	assert.Equal(t, out.Outcome, rec.results[0].outcome)
	assert.Equal(t, "gaffer", rec.results[0].name)

	req = httptest.NewRequest("POST", "/simulations", strings.NewReader(`{"team":"Arsenal"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Owner", "user-9")
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, 400, resp.StatusCode)
}

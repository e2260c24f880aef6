package services

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastTracker(t *testing.T) *ProgressTracker {
	tr := NewProgressTracker(newTestScheduler(t), nil)
	tr.Interval = 10 * time.Millisecond
	return tr
}

func TestProgress_TicksUpToCap(t *testing.T) {
	tr := fastTracker(t)
	id, err := tr.Begin("o1", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		p, _ := tr.Get("o1", id)
		return p.Percent == 90
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	p, ok := tr.Get("o1", id)
	require.True(t, ok)
	assert.Equal(t, 90, p.Percent, "never passes the cap while running")
	assert.Equal(t, ProgressRunning, p.State)

	tr.Complete(id)
	p, _ = tr.Get("o1", id)
	assert.Equal(t, 100, p.Percent)
	assert.Equal(t, ProgressDone, p.State)
}

func TestProgress_NewBeginCancelsPrevious(t *testing.T) {
	tr := fastTracker(t)
	first, err := tr.Begin("o1", "a")
	require.NoError(t, err)
	second, err := tr.Begin("o1", "b")
	require.NoError(t, err)

	p, ok := tr.Get("o1", first)
	require.True(t, ok)
	assert.Equal(t, ProgressCancelled, p.State)

	frozen := p.Percent
	time.Sleep(50 * time.Millisecond)
	p, _ = tr.Get("o1", first)
	assert.Equal(t, frozen, p.Percent, "cancelled trackers stop ticking")

	p, _ = tr.Get("o1", second)
	assert.Equal(t, ProgressRunning, p.State)

	// completing a cancelled tracker changes nothing
	tr.Complete(first)
	p, _ = tr.Get("o1", first)
	assert.Equal(t, ProgressCancelled, p.State)
}

func TestProgress_OwnersAreIsolated(t *testing.T) {
	tr := fastTracker(t)
	_, err := tr.Begin("o1", "a")
	require.NoError(t, err)
	_, err = tr.Begin("o2", "b")
	require.NoError(t, err)

	_, ok := tr.Get("o2", "a")
	assert.False(t, ok)
	p, _ := tr.Get("o1", "a")
	assert.Equal(t, ProgressRunning, p.State, "another owner's Begin does not cancel")
}

func TestProgress_RepeatedIDJoinsRunningTracker(t *testing.T) {
	tr := fastTracker(t)
	first, err := tr.Begin("o1", "dup")
	require.NoError(t, err)
	second, err := tr.Begin("o1", "dup")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, tr.sched.Jobs(), 1, "one tick job per id")

	tr.Complete("dup")
	// only the retention cleanup remains
	require.Eventually(t, func() bool {
		return len(tr.sched.Jobs()) == 1
	}, time.Second, 5*time.Millisecond)

	p, ok := tr.Get("o1", "dup")
	require.True(t, ok)
	frozen := p.Percent
	time.Sleep(50 * time.Millisecond)
	p, _ = tr.Get("o1", "dup")
	assert.Equal(t, frozen, p.Percent)
	assert.Equal(t, ProgressDone, p.State)
}

func TestProgress_FinishedIDCanBeReused(t *testing.T) {
	tr := fastTracker(t)
	_, err := tr.Begin("o1", "again")
	require.NoError(t, err)
	tr.Complete("again")

	id, err := tr.Begin("o1", "again")
	require.NoError(t, err)
	assert.Equal(t, "again", id)
	p, ok := tr.Get("o1", id)
	require.True(t, ok)
	assert.Equal(t, ProgressRunning, p.State)
}

func TestProgress_IDHeldByAnotherOwnerIsNotTaken(t *testing.T) {
	tr := fastTracker(t)
	aliceID, err := tr.Begin("alice", "req-1")
	require.NoError(t, err)
	require.Equal(t, "req-1", aliceID)

	otherID, err := tr.Begin("mallory", "req-1")
	require.NoError(t, err)
	assert.NotEqual(t, "req-1", otherID)

	p, ok := tr.Get("alice", "req-1")
	require.True(t, ok)
	assert.Equal(t, ProgressRunning, p.State)
	_, ok = tr.Get("mallory", "req-1")
	assert.False(t, ok)

	tr.Complete(aliceID)
	tr.Complete(otherID)
	require.Eventually(t, func() bool {
		return len(tr.sched.Jobs()) == 2 // two retention cleanups, no tick jobs
	}, time.Second, 5*time.Millisecond)
}

func TestProgress_ForgottenAfterRetention(t *testing.T) {
	tr := fastTracker(t)
	tr.Retention = 20 * time.Millisecond
	id, err := tr.Begin("o1", "")
	require.NoError(t, err)
	tr.Complete(id)

	require.Eventually(t, func() bool {
		_, ok := tr.Get("o1", id)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProgressRoutes(t *testing.T) {
	tr := fastTracker(t)
	app := newTestApp()
	app.Get("/progress/:id", tr.GetProgress)
	app.Get("/progress/:id/stream", tr.StreamProgress)

	id, err := tr.Begin("o1", "job-1")
	require.NoError(t, err)
	tr.Complete(id)

	req := httptest.NewRequest("GET", "/progress/job-1", nil)
	req.Header.Set("X-Test-Owner", "o1")
	resp, body := doRequest(t, app, req)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, body, `"percent":100`)

	req = httptest.NewRequest("GET", "/progress/job-1", nil)
	req.Header.Set("X-Test-Owner", "o2")
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, 404, resp.StatusCode)

	req = httptest.NewRequest("GET", "/progress/job-1/stream", nil)
	req.Header.Set("X-Test-Owner", "o1")
	resp, body = doRequest(t, app, req)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "event: progress")
	assert.Contains(t, body, `"state":"done"`)
}

func TestProgressStream_UnknownIDGivesUp(t *testing.T) {
	old := StreamWait
	StreamWait = 30 * time.Millisecond
	t.Cleanup(func() { StreamWait = old })

	tr := fastTracker(t)
	app := newTestApp()
	app.Get("/progress/:id/stream", tr.StreamProgress)

	req := httptest.NewRequest("GET", "/progress/nope/stream", nil)
	req.Header.Set("X-Test-Owner", "o1")
	_, body := doRequest(t, app, req)
	assert.Contains(t, body, "event: gone")
}

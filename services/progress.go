package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"stattact-service/observability"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProgressState string

const (
	ProgressRunning   ProgressState = "running"
	ProgressDone      ProgressState = "done"
	ProgressCancelled ProgressState = "cancelled"
)

// Progress is the pseudo-progress of one pending generation or simulation.
type Progress struct {
	ID        string        `json:"id"`
	Percent   int           `json:"percent"`
	State     ProgressState `json:"state"`
	UpdatedAt time.Time     `json:"updated_at"`

	owner string
	job   uuid.UUID
}

// ProgressTracker ticks each running operation up to Cap on a repeating
// gocron job. An owner has at most one running operation: starting another
// cancels the previous one.
type ProgressTracker struct {
	Interval  time.Duration
	Step      int
	Cap       int
	Retention time.Duration
	Metrics   *observability.Metrics

	sched gocron.Scheduler

	mu      sync.Mutex
	entries map[string]*Progress
	active  map[string]string // owner -> running id
}

func NewProgressTracker(sched gocron.Scheduler, metrics *observability.Metrics) *ProgressTracker {
	return &ProgressTracker{
		Interval:  300 * time.Millisecond,
		Step:      10,
		Cap:       90,
		Retention: 2 * time.Minute,
		Metrics:   metrics,
		sched:     sched,
		entries:   make(map[string]*Progress),
		active:    make(map[string]string),
	}
}

// Begin starts tracking id for owner and returns the id actually used. An
// empty id, or one held by another owner, gets a fresh uuid. Beginning an id
// the same owner is already running joins that tracker.
func (t *ProgressTracker) Begin(owner, id string) (string, error) {
	t.mu.Lock()
	if cur, ok := t.entries[id]; ok && cur.owner != owner {
		id = ""
	}
	if id == "" {
		id = uuid.NewString()
	}
	if cur, ok := t.entries[id]; ok && cur.State == ProgressRunning {
		t.mu.Unlock()
		return id, nil
	}
	prev, hadPrev := t.active[owner]

	// reserve the id before scheduling so a concurrent Begin joins it
	p := &Progress{
		ID:        id,
		State:     ProgressRunning,
		UpdatedAt: time.Now(),
		owner:     owner,
	}
	t.entries[id] = p
	t.active[owner] = id
	t.mu.Unlock()

	if hadPrev && prev != id {
		t.Cancel(prev)
	}

	job, err := t.sched.NewJob(
		gocron.DurationJob(t.Interval),
		gocron.NewTask(t.tick, id),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		t.mu.Lock()
		if t.entries[id] == p {
			delete(t.entries, id)
		}
		if t.active[owner] == id {
			delete(t.active, owner)
		}
		t.mu.Unlock()
		return "", fmt.Errorf("schedule progress %s: %w", id, err)
	}

	t.mu.Lock()
	p.job = job.ID()
	stopped := p.State != ProgressRunning
	t.mu.Unlock()
	t.Metrics.ProgressStarted()

	// finished while the job was being scheduled
	if stopped {
		t.removeJob(id, job.ID())
		t.Metrics.ProgressStopped()
	}
	return id, nil
}

func (t *ProgressTracker) tick(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[id]
	if !ok || p.State != ProgressRunning {
		return
	}
	if p.Percent+t.Step < t.Cap {
		p.Percent += t.Step
	} else {
		p.Percent = t.Cap
	}
	p.UpdatedAt = time.Now()
}

// Complete snaps id to 100%.
func (t *ProgressTracker) Complete(id string) {
	t.finish(id, ProgressDone)
}

// Cancel stops id where it is.
func (t *ProgressTracker) Cancel(id string) {
	t.finish(id, ProgressCancelled)
}

func (t *ProgressTracker) finish(id string, state ProgressState) {
	t.mu.Lock()
	p, ok := t.entries[id]
	if !ok || p.State != ProgressRunning {
		t.mu.Unlock()
		return
	}
	p.State = state
	if state == ProgressDone {
		p.Percent = 100
	}
	p.UpdatedAt = time.Now()
	if t.active[p.owner] == id {
		delete(t.active, p.owner)
	}
	job := p.job
	t.mu.Unlock()

	// a zero job means Begin is still scheduling; it removes the job itself
	if job != uuid.Nil {
		t.removeJob(id, job)
		t.Metrics.ProgressStopped()
	}
	t.forgetLater(p)
}

func (t *ProgressTracker) removeJob(id string, job uuid.UUID) {
	if err := t.sched.RemoveJob(job); err != nil {
		log.Printf("⚠️ [PROGRESS] Failed to remove tick job for %s: %v", id, err)
	}
}

// forgetLater drops p after Retention unless the id has been reused since.
func (t *ProgressTracker) forgetLater(p *Progress) {
	_, err := t.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(t.Retention))),
		gocron.NewTask(func() {
			t.mu.Lock()
			if t.entries[p.ID] == p {
				delete(t.entries, p.ID)
			}
			t.mu.Unlock()
		}),
	)
	if err != nil {
		log.Printf("⚠️ [PROGRESS] Failed to schedule cleanup for %s: %v", p.ID, err)
	}
}

// Get returns a snapshot of id if owner started it.
func (t *ProgressTracker) Get(owner, id string) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[id]
	if !ok || p.owner != owner {
		return Progress{}, false
	}
	return *p, true
}

// GetProgress answers GET /progress/:id.
func (t *ProgressTracker) GetProgress(c *fiber.Ctx) error {
	p, ok := t.Get(ownerID(c), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "progress not found"})
	}
	return c.JSON(p)
}

// StreamProgress sends a "progress" event on every change until the
// operation stops. A stream may be opened before the operation begins; it
// waits up to StreamWait for it to appear.
func (t *ProgressTracker) StreamProgress(c *fiber.Ctx) error {
	owner := ownerID(c)
	id := c.Params("id")
	done := c.Context().Done()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(t.Interval / 2)
		defer ticker.Stop()
		deadline := time.Now().Add(StreamWait)

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		var last Progress
		seen := false
		for {
			if p, ok := t.Get(owner, id); ok {
				if !seen || p.Percent != last.Percent || p.State != last.State {
					payload, _ := json.Marshal(p)
					fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
					if err := w.Flush(); err != nil {
						return
					}
				}
				seen, last = true, p
				if p.State != ProgressRunning {
					return
				}
			} else if seen || time.Now().After(deadline) {
				fmt.Fprintf(w, "event: gone\ndata: {\"id\":%q}\n\n", id)
				w.Flush()
				return
			}

			select {
			case <-ticker.C:
			case <-done:
				return
			}
		}
	})

	return nil
}

// StreamWait bounds how long a stream waits for an unknown id.
var StreamWait = 5 * time.Second

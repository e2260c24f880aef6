// workers/team_sync_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"stattact-service/models"
	"stattact-service/observability"
	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamLister is the backend call the worker mirrors.
type TeamLister interface {
	FetchTeams(ctx context.Context) ([]services.BackendTeam, error)
}

// CacheInvalidator drops a cached team list after a sync changes it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// TeamSyncWorker mirrors the backend's team list into the teams table.
type TeamSyncWorker struct {
	db       *gorm.DB
	backend  TeamLister
	cache    CacheInvalidator // optional
	metrics  *observability.Metrics
	interval time.Duration
}

func NewTeamSyncWorker(db *gorm.DB, backend TeamLister, cache CacheInvalidator, metrics *observability.Metrics, interval time.Duration) *TeamSyncWorker {
	return &TeamSyncWorker{
		db:       db,
		backend:  backend,
		cache:    cache,
		metrics:  metrics,
		interval: interval,
	}
}

func (w *TeamSyncWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting Team Sync Worker (backend → teams) every %s…", w.interval)
	go w.run(ctx)
}

func (w *TeamSyncWorker) run(ctx context.Context) {
	if _, err := w.Sync(ctx); err != nil {
		log.Printf("⚠️ [TEAM_SYNC] Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sync(ctx); err != nil {
				log.Printf("❌ [TEAM_SYNC] Sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Team Sync Worker stopped")
			return
		}
	}
}

// Sync fetches the backend list once and upserts it. It returns how many
// teams were written.
func (w *TeamSyncWorker) Sync(ctx context.Context) (int, error) {
	remote, err := w.backend.FetchTeams(ctx)
	if err != nil {
		w.metrics.TeamSync("error")
		return 0, fmt.Errorf("fetch teams: %w", err)
	}

	names := services.TeamNames(remote)
	if len(names) == 0 {
		w.metrics.TeamSync("empty")
		log.Printf("[TEAM_SYNC] ✅ Backend returned no teams, keeping local list")
		return 0, nil
	}

	var upsertCount, errorCount int
	for _, name := range names {
		row := models.Team{Name: name, SearchKey: services.SearchKey(name), Source: "backend"}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"search_key", "source", "updated_at"}),
		}).Create(&row).Error; err != nil {
			errorCount++
			log.Printf("[TEAM_SYNC] ⚠️ Failed to upsert team %q: %v", name, err)
		} else {
			upsertCount++
		}
	}

	if w.cache != nil && upsertCount > 0 {
		if err := w.cache.Invalidate(ctx); err != nil {
			log.Printf("[TEAM_SYNC] ⚠️ Failed to invalidate team cache: %v", err)
		}
	}

	status := "ok"
	if errorCount > 0 {
		status = "partial"
	}
	w.metrics.TeamSync(status)
	log.Printf("[TEAM_SYNC] ✅ Synced %d team(s) (%d upserted, %d errors)", len(names), upsertCount, errorCount)
	return upsertCount, nil
}

// TriggerSync answers POST /internal/teams/sync.
func (w *TeamSyncWorker) TriggerSync(c *fiber.Ctx) error {
	n, err := w.Sync(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"synced": n})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stattact-service/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Points per simulated result.
var resultPoints = map[string]int64{
	models.ResultWin:  3,
	models.ResultDraw: 1,
	models.ResultLoss: 0,
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Seed fills an empty table with the launch season standings.
func (s *LeaderboardService) Seed(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.LeaderboardEntry{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count leaderboard: %w", err)
	}
	if count > 0 {
		return nil
	}
	rows := make([]models.LeaderboardEntry, len(models.LeaderboardSeed))
	copy(rows, models.LeaderboardSeed)
	for i := range rows {
		rows[i].ExternalUserID = "seed:" + rows[i].Username
	}
	if err := s.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed leaderboard: %w", err)
	}
	_, err := s.RecomputeRanks(ctx)
	return err
}

// RecordResult adds a simulated result to the user's entry, creating it on
// first play.
func (s *LeaderboardService) RecordResult(ctx context.Context, externalUserID, username, outcome string) error {
	points, ok := resultPoints[outcome]
	if !ok {
		return fmt.Errorf("unknown result %q: %w", outcome, ErrInvalidInput)
	}
	column := map[string]string{
		models.ResultWin:  "wins",
		models.ResultDraw: "draws",
		models.ResultLoss: "losses",
	}[outcome]

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.LeaderboardEntry
		err := tx.Where("external_user_id = ?", externalUserID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.LeaderboardEntry{ExternalUserID: externalUserID, Username: username}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("create leaderboard entry: %w", err)
			}
		} else if err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&entry).Updates(map[string]interface{}{
			"points":         gorm.Expr("points + ?", points),
			column:           gorm.Expr(column + " + 1"),
			"last_result_at": &now,
		}).Error
	})
}

// RecomputeRanks writes 1-based ranks ordered by points, then wins.
func (s *LeaderboardService) RecomputeRanks(ctx context.Context) (int, error) {
	var entries []models.LeaderboardEntry
	if err := s.DB.WithContext(ctx).Order("points DESC, wins DESC, username ASC").Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("load leaderboard: %w", err)
	}
	changed := 0
	for i, e := range entries {
		rank := i + 1
		if e.Rank == rank {
			continue
		}
		if err := s.DB.WithContext(ctx).Model(&models.LeaderboardEntry{}).
			Where("id = ?", e.ID).
			UpdateColumn("rank", rank).Error; err != nil {
			return changed, fmt.Errorf("update rank for %s: %w", e.Username, err)
		}
		changed++
	}
	return changed, nil
}

// Top returns the best entries with ranks by position.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.DB.WithContext(ctx).
		Order("points DESC, wins DESC, username ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// StartRankScheduler recomputes ranks every minute on sched.
func (s *LeaderboardService) StartRankScheduler(sched gocron.Scheduler) error {
	_, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			changed, err := s.RecomputeRanks(context.Background())
			if err != nil {
				log.Printf("[Scheduler] Rank recompute failed: %v", err)
				return
			}
			if changed > 0 {
				log.Printf("✅ [Scheduler] Updated %d leaderboard rank(s)", changed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	entries, err := s.Top(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}
	return c.JSON(entries)
}

// GetMyStanding returns the caller's entry with its last computed rank.
func (s *LeaderboardService) GetMyStanding(c *fiber.Ctx) error {
	var entry models.LeaderboardEntry
	err := s.DB.WithContext(c.UserContext()).Where("external_user_id = ?", userID(c)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no results recorded yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entry)
}

func (s *LeaderboardService) RecomputeRanksHandler(c *fiber.Ctx) error {
	changed, err := s.RecomputeRanks(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"updated": changed})
}

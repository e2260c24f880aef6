package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"stattact-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityService struct {
	DB      *gorm.DB
	History *HistoryService
}

func NewCommunityService(db *gorm.DB, history *HistoryService) *CommunityService {
	return &CommunityService{DB: db, History: history}
}

// Seed fills an empty feed with the featured formations.
func (s *CommunityService) Seed(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.CommunityFormation{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count community formations: %w", err)
	}
	if count > 0 {
		return nil
	}
	rows := make([]models.CommunityFormation, len(models.CommunitySeed))
	copy(rows, models.CommunitySeed)
	if err := s.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed community formations: %w", err)
	}
	return nil
}

// List orders by likes for sort=popular, newest first otherwise.
func (s *CommunityService) List(ctx context.Context, sort string, limit int) ([]models.CommunityFormation, error) {
	order := "created_at DESC"
	if sort == "popular" {
		order = "likes DESC, views DESC"
	}
	var out []models.CommunityFormation
	err := s.DB.WithContext(ctx).Omit("tactics").Order(order).Limit(limit).Find(&out).Error
	return out, err
}

// View returns one formation and counts the view.
func (s *CommunityService) View(ctx context.Context, id string) (*models.CommunityFormation, error) {
	return s.bump(ctx, id, "views")
}

func (s *CommunityService) Like(ctx context.Context, id string) (*models.CommunityFormation, error) {
	return s.bump(ctx, id, "likes")
}

func (s *CommunityService) bump(ctx context.Context, id, column string) (*models.CommunityFormation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("community formation %s: %w", id, ErrNotFound)
	}
	var f models.CommunityFormation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CommunityFormation{}).Where("id = ?", id).
			UpdateColumn(column, gorm.Expr(column+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("community formation %s: %w", id, ErrNotFound)
		}
		return tx.First(&f, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Publish shares one of the owner's saved formations.
func (s *CommunityService) Publish(ctx context.Context, owner, userID, creator, savedID, title string) (*models.CommunityFormation, error) {
	saved, err := s.History.FindSaved(ctx, owner, savedID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("%s vs %s: %s", saved.Team, saved.Opponent, saved.Formation)
	}
	f := models.CommunityFormation{
		ExternalUserID: userID,
		Creator:        creator,
		Team:           saved.Team,
		Opponent:       saved.Opponent,
		Formation:      saved.Formation,
		Title:          title,
		Tactics:        saved.Tactics,
	}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, fmt.Errorf("publish formation: %w", err)
	}
	log.Printf("✅ [COMMUNITY] %s published %q", creator, title)
	return &f, nil
}

func (s *CommunityService) ListCommunity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, err := s.List(c.UserContext(), c.Query("sort"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load community formations"})
	}
	return c.JSON(list)
}

func (s *CommunityService) GetCommunity(c *fiber.Ctx) error {
	f, err := s.View(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(communityStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(f)
}

func (s *CommunityService) LikeCommunity(c *fiber.Ctx) error {
	f, err := s.Like(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(communityStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(f)
}

type PublishRequest struct {
	SavedID string `json:"saved_id"`
	Title   string `json:"title"`
}

func (s *CommunityService) PublishCommunity(c *fiber.Ctx) error {
	var req PublishRequest
	if err := c.BodyParser(&req); err != nil || req.SavedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "saved_id is required"})
	}
	f, err := s.Publish(c.UserContext(), ownerID(c), userID(c), usernameFromEmail(userEmail(c)), req.SavedID, req.Title)
	if err != nil {
		return c.Status(communityStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func communityStatus(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound
	}
	return errorStatus(err)
}

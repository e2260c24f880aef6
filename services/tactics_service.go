package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stattact-service/observability"
	"stattact-service/tactics"

	"github.com/gofiber/fiber/v2"
)

// GenerationErrorText replaces the analysis when the backend call fails.
const GenerationErrorText = "⚠️ Error generating tactics. Please try again."

// Analysis sources reported to clients and metrics.
const (
	SourceBackend  = "backend"
	SourceMock     = "mock"
	SourceFallback = "fallback"
)

// Generation is the outcome of one analysis request.
type Generation struct {
	Result     string `json:"result"`
	Formation  string `json:"formation"`
	Source     string `json:"source"`
	Fallback   bool   `json:"fallback"`
	HistoryID  string `json:"history_id,omitempty"`
	ProgressID string `json:"progress_id,omitempty"`
}

type TacticsService struct {
	History  *HistoryService
	Teams    *TeamDirectory
	Backend  *BackendClient // nil: always use the mock generator
	Progress *ProgressTracker
	Rand     tactics.Source
	Metrics  *observability.Metrics
}

func NewTacticsService(history *HistoryService, teams *TeamDirectory, backend *BackendClient, progress *ProgressTracker, rng tactics.Source, metrics *observability.Metrics) *TacticsService {
	return &TacticsService{
		History:  history,
		Teams:    teams,
		Backend:  backend,
		Progress: progress,
		Rand:     rng,
		Metrics:  metrics,
	}
}

// Generate produces an analysis for team vs opponent and records it. A
// backend failure yields GenerationErrorText with Fallback set; that text is
// shown but never enters the history.
func (s *TacticsService) Generate(ctx context.Context, owner, team, opponent string) (*Generation, error) {
	team = strings.TrimSpace(team)
	opponent = strings.TrimSpace(opponent)
	if team == "" {
		return nil, fmt.Errorf("team is required: %w", ErrInvalidInput)
	}
	if s.Teams != nil {
		names := s.Teams.Canonical(ctx, team, opponent)
		team, opponent = names[0], names[1]
	}

	text, source := "", SourceMock
	if s.Backend != nil {
		result, err := s.Backend.GenerateFormation(ctx, team, opponent)
		if err != nil {
			log.Printf("❌ [TACTICS] Backend generation failed for %s vs %s: %v", team, opponent, err)
			s.Metrics.AnalysisGenerated(SourceFallback)
			if err := s.History.ShowError(ctx, owner, team, opponent, GenerationErrorText); err != nil {
				return nil, err
			}
			return &Generation{
				Result:    GenerationErrorText,
				Formation: tactics.DefaultFormation,
				Source:    SourceFallback,
				Fallback:  true,
			}, nil
		}
		if strings.TrimSpace(result) != "" {
			text, source = result, SourceBackend
		}
	}
	if text == "" {
		text = tactics.GenerateAnalysis(s.Rand, team, opponent)
	}

	item, err := s.History.RecordResult(ctx, owner, team, opponent, text)
	if err != nil {
		return nil, err
	}
	s.Metrics.AnalysisGenerated(source)
	log.Printf("✅ [TACTICS] %s vs %s → %s (%s)", team, opponent, item.Formation, source)

	return &Generation{
		Result:    text,
		Formation: item.Formation,
		Source:    source,
		HistoryID: item.ID,
	}, nil
}

// GenerateFormation answers GET /generate-formation?team=&opponent=. The
// request id (X-Request-ID, client supplied or generated) names the progress
// tracker for the call.
func (s *TacticsService) GenerateFormation(c *fiber.Ctx) error {
	owner := ownerID(c)
	progressID := s.beginProgress(c, owner)

	gen, err := s.Generate(c.UserContext(), owner, c.Query("team"), c.Query("opponent"))
	if progressID != "" {
		s.Progress.Complete(progressID)
	}
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	gen.ProgressID = progressID
	return c.JSON(gen)
}

func (s *TacticsService) beginProgress(c *fiber.Ctx, owner string) string {
	if s.Progress == nil {
		return ""
	}
	id, err := s.Progress.Begin(owner, c.GetRespHeader(fiber.HeaderXRequestID))
	if err != nil {
		log.Printf("⚠️ [TACTICS] Progress tracking unavailable: %v", err)
		return ""
	}
	return id
}

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

// ResultRecorder receives the outcome of a simulation played by a signed-in user.
type ResultRecorder interface {
	RecordResult(ctx context.Context, externalUserID, username, outcome string) error
}

type SimulationService struct {
	Rand        tactics.Source
	Progress    *ProgressTracker
	Leaderboard ResultRecorder // optional
	Metrics     *observability.Metrics
}

func NewSimulationService(rng tactics.Source, progress *ProgressTracker, leaderboard ResultRecorder, metrics *observability.Metrics) *SimulationService {
	return &SimulationService{Rand: rng, Progress: progress, Leaderboard: leaderboard, Metrics: metrics}
}

type SimulationRequest struct {
	Team     string `json:"team"`
	Opponent string `json:"opponent"`
}

type SimulationResponse struct {
	tactics.SimulationResult
	Outcome    string `json:"outcome"`
	ProgressID string `json:"progress_id,omitempty"`
}

// Simulate plays team vs opponent. Both names are required. When userID is
// set the outcome counts towards that user's leaderboard entry; a failure to
// record it is logged and does not fail the simulation.
func (s *SimulationService) Simulate(ctx context.Context, userID, username, team, opponent string) (*tactics.SimulationResult, error) {
	team = strings.TrimSpace(team)
	opponent = strings.TrimSpace(opponent)
	if team == "" || opponent == "" {
		return nil, fmt.Errorf("team and opponent are required: %w", ErrInvalidInput)
	}

	res := tactics.Simulate(s.Rand, team, opponent)
	s.Metrics.MatchSimulated(res.Score.Team + res.Score.Opponent)
	log.Printf("⚽ [SIM] %s %d-%d %s", team, res.Score.Team, res.Score.Opponent, opponent)

	if userID != "" && s.Leaderboard != nil {
		if err := s.Leaderboard.RecordResult(ctx, userID, username, res.Outcome()); err != nil {
			log.Printf("⚠️ [SIM] Failed to record %s for %s: %v", res.Outcome(), userID, err)
		}
	}
	return &res, nil
}

// SimulateMatch answers POST /simulations.
func (s *SimulationService) SimulateMatch(c *fiber.Ctx) error {
	var req SimulationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if strings.TrimSpace(req.Team) == "" || strings.TrimSpace(req.Opponent) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "team and opponent are required"})
	}

	var progressID string
	if s.Progress != nil {
		id, err := s.Progress.Begin(ownerID(c), c.GetRespHeader(fiber.HeaderXRequestID))
		if err != nil {
			log.Printf("⚠️ [SIM] Progress tracking unavailable: %v", err)
		}
		progressID = id
	}

	res, err := s.Simulate(c.UserContext(), userID(c), usernameFromEmail(userEmail(c)), req.Team, req.Opponent)
	if progressID != "" {
		s.Progress.Complete(progressID)
	}
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(SimulationResponse{SimulationResult: *res, Outcome: res.Outcome(), ProgressID: progressID})
}

// usernameFromEmail is the leaderboard display name for a signed-in user.
func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

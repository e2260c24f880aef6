package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"stattact-service/observability"
	"stattact-service/tactics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxHistory is how many generated analyses an owner keeps.
const MaxHistory = 5

// TacticalResult is one generated analysis in the owner's history.
type TacticalResult struct {
	ID        string    `json:"id"`
	Team      string    `json:"team"`
	Opponent  string    `json:"opponent"`
	Result    string    `json:"result"`
	Formation string    `json:"formation"`
	CreatedAt time.Time `json:"date"`
}

// SavedFormation is an explicitly saved analysis with its marker overrides.
type SavedFormation struct {
	ID              string                   `json:"id"`
	Team            string                   `json:"team"`
	Opponent        string                   `json:"opponent"`
	Formation       string                   `json:"formation"`
	Tactics         string                   `json:"tactics"`
	CreatedAt       time.Time                `json:"date"`
	CustomPositions map[string]tactics.Point `json:"customPositions"`
}

// Workspace is what the owner currently has on screen.
type Workspace struct {
	Team            string                   `json:"team"`
	Opponent        string                   `json:"opponent"`
	Tactics         string                   `json:"tactics"`
	CustomPositions map[string]tactics.Point `json:"customPositions"`
}

// WorkspacePatch selects team and/or opponent. Nil fields are left alone.
type WorkspacePatch struct {
	Team     *string `json:"team"`
	Opponent *string `json:"opponent"`
}

// Layout is the pitch for the workspace's current formation.
type Layout struct {
	Formation string                 `json:"formation"`
	Positions []tactics.PositionSlot `json:"positions"`
}

type HistoryService struct {
	Store   KVStore
	Metrics *observability.Metrics
	Now     func() time.Time

	locks sync.Map // owner -> *sync.Mutex
}

func NewHistoryService(store KVStore, metrics *observability.Metrics) *HistoryService {
	return &HistoryService{Store: store, Metrics: metrics, Now: time.Now}
}

func (s *HistoryService) lock(owner string) func() {
	v, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RecordResult prepends a generated analysis to the owner's history and makes
// it the current workspace.
func (s *HistoryService) RecordResult(ctx context.Context, owner, team, opponent, text string) (*TacticalResult, error) {
	defer s.lock(owner)()

	var history []TacticalResult
	if err := s.load(ctx, owner, KeyMatchHistory, &history); err != nil {
		return nil, err
	}

	item := TacticalResult{
		ID:        uuid.NewString(),
		Team:      team,
		Opponent:  opponent,
		Result:    text,
		Formation: tactics.ExtractFormation(text),
		CreatedAt: s.Now(),
	}
	history = append([]TacticalResult{item}, history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	if err := s.save(ctx, owner, KeyMatchHistory, history); err != nil {
		return nil, err
	}

	ws := Workspace{Team: team, Opponent: opponent, Tactics: text}
	if err := s.save(ctx, owner, KeyWorkspace, ws); err != nil {
		return nil, err
	}
	return &item, nil
}

// ShowError puts a failed generation's message on screen without recording
// it to history.
func (s *HistoryService) ShowError(ctx context.Context, owner, team, opponent, text string) error {
	defer s.lock(owner)()
	return s.save(ctx, owner, KeyWorkspace, Workspace{Team: team, Opponent: opponent, Tactics: text})
}

func (s *HistoryService) History(ctx context.Context, owner string) ([]TacticalResult, error) {
	history := []TacticalResult{}
	if err := s.load(ctx, owner, KeyMatchHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *HistoryService) ClearHistory(ctx context.Context, owner string) error {
	defer s.lock(owner)()
	return s.save(ctx, owner, KeyMatchHistory, []TacticalResult{})
}

// SaveCurrent snapshots the workspace into the saved list. Without a team and
// tactics it stores nothing and returns ErrNothingToSave.
func (s *HistoryService) SaveCurrent(ctx context.Context, owner string) (*SavedFormation, error) {
	defer s.lock(owner)()

	ws, err := s.workspace(ctx, owner)
	if err != nil {
		return nil, err
	}
	if ws.Team == "" || ws.Tactics == "" {
		return nil, ErrNothingToSave
	}

	var saved []SavedFormation
	if err := s.load(ctx, owner, KeySavedFormations, &saved); err != nil {
		return nil, err
	}
	item := SavedFormation{
		ID:              uuid.NewString(),
		Team:            ws.Team,
		Opponent:        ws.Opponent,
		Formation:       tactics.ExtractFormation(ws.Tactics),
		Tactics:         ws.Tactics,
		CreatedAt:       s.Now(),
		CustomPositions: copyPoints(ws.CustomPositions),
	}
	saved = append([]SavedFormation{item}, saved...)
	if err := s.save(ctx, owner, KeySavedFormations, saved); err != nil {
		return nil, err
	}
	s.Metrics.FormationSaved()
	return &item, nil
}

func (s *HistoryService) Saved(ctx context.Context, owner string) ([]SavedFormation, error) {
	saved := []SavedFormation{}
	if err := s.load(ctx, owner, KeySavedFormations, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// FindSaved returns one saved formation by id.
func (s *HistoryService) FindSaved(ctx context.Context, owner, id string) (*SavedFormation, error) {
	saved, err := s.Saved(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range saved {
		if saved[i].ID == id {
			return &saved[i], nil
		}
	}
	return nil, fmt.Errorf("saved formation %s: %w", id, ErrNotFound)
}

func (s *HistoryService) DeleteSaved(ctx context.Context, owner, id string) error {
	defer s.lock(owner)()

	var saved []SavedFormation
	if err := s.load(ctx, owner, KeySavedFormations, &saved); err != nil {
		return err
	}
	kept := make([]SavedFormation, 0, len(saved))
	for _, f := range saved {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(saved) {
		return fmt.Errorf("saved formation %s: %w", id, ErrNotFound)
	}
	return s.save(ctx, owner, KeySavedFormations, kept)
}

// LoadHistoryItem replaces team, opponent and tactics with the history entry.
// Marker overrides are left as they are.
func (s *HistoryService) LoadHistoryItem(ctx context.Context, owner, id string) (*Workspace, error) {
	defer s.lock(owner)()

	var history []TacticalResult
	if err := s.load(ctx, owner, KeyMatchHistory, &history); err != nil {
		return nil, err
	}
	for _, item := range history {
		if item.ID != id {
			continue
		}
		ws, err := s.workspace(ctx, owner)
		if err != nil {
			return nil, err
		}
		ws.Team, ws.Opponent, ws.Tactics = item.Team, item.Opponent, item.Result
		if err := s.save(ctx, owner, KeyWorkspace, ws); err != nil {
			return nil, err
		}
		return ws, nil
	}
	return nil, fmt.Errorf("history item %s: %w", id, ErrNotFound)
}

// LoadSaved restores a saved formation including its marker overrides.
func (s *HistoryService) LoadSaved(ctx context.Context, owner, id string) (*Workspace, error) {
	defer s.lock(owner)()

	var saved []SavedFormation
	if err := s.load(ctx, owner, KeySavedFormations, &saved); err != nil {
		return nil, err
	}
	for _, f := range saved {
		if f.ID != id {
			continue
		}
		ws := &Workspace{
			Team:            f.Team,
			Opponent:        f.Opponent,
			Tactics:         f.Tactics,
			CustomPositions: copyPoints(f.CustomPositions),
		}
		if err := s.save(ctx, owner, KeyWorkspace, ws); err != nil {
			return nil, err
		}
		return ws, nil
	}
	return nil, fmt.Errorf("saved formation %s: %w", id, ErrNotFound)
}

func (s *HistoryService) Workspace(ctx context.Context, owner string) (*Workspace, error) {
	return s.workspace(ctx, owner)
}

func (s *HistoryService) UpdateWorkspace(ctx context.Context, owner string, patch WorkspacePatch) (*Workspace, error) {
	defer s.lock(owner)()

	ws, err := s.workspace(ctx, owner)
	if err != nil {
		return nil, err
	}
	if patch.Team != nil {
		ws.Team = *patch.Team
	}
	if patch.Opponent != nil {
		ws.Opponent = *patch.Opponent
	}
	if err := s.save(ctx, owner, KeyWorkspace, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// MovePlayer records a dragged marker position for a position label.
func (s *HistoryService) MovePlayer(ctx context.Context, owner, label string, x, y float64) (*Workspace, error) {
	defer s.lock(owner)()

	ws, err := s.workspace(ctx, owner)
	if err != nil {
		return nil, err
	}
	formation := tactics.DefaultFormation
	if ws.Tactics != "" {
		formation = tactics.ExtractFormation(ws.Tactics)
	}
	if !hasLabel(tactics.PositionsFor(formation), label) {
		return nil, fmt.Errorf("position %q is not in %s: %w", label, formation, ErrInvalidInput)
	}
	if ws.CustomPositions == nil {
		ws.CustomPositions = make(map[string]tactics.Point)
	}
	ws.CustomPositions[label] = tactics.Point{X: x, Y: y}
	if err := s.save(ctx, owner, KeyWorkspace, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Layout lays out the workspace formation with overrides applied.
func (s *HistoryService) Layout(ctx context.Context, owner string) (*Layout, error) {
	ws, err := s.workspace(ctx, owner)
	if err != nil {
		return nil, err
	}
	formation := tactics.DefaultFormation
	if ws.Tactics != "" {
		formation = tactics.ExtractFormation(ws.Tactics)
	}
	return &Layout{
		Formation: formation,
		Positions: tactics.ApplyOverrides(tactics.PositionsFor(formation), ws.CustomPositions),
	}, nil
}

func (s *HistoryService) workspace(ctx context.Context, owner string) (*Workspace, error) {
	ws := &Workspace{}
	if err := s.load(ctx, owner, KeyWorkspace, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// load leaves dst untouched when the key is missing. Unreadable documents are
// logged and treated as missing.
func (s *HistoryService) load(ctx context.Context, owner, key string, dst any) error {
	raw, ok, err := s.Store.Get(ctx, owner, key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("⚠️ [HISTORY] Discarding unreadable %s for %s: %v", key, owner, err)
	}
	return nil
}

func (s *HistoryService) save(ctx context.Context, owner, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Store.Set(ctx, owner, key, string(data))
}

func copyPoints(in map[string]tactics.Point) map[string]tactics.Point {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]tactics.Point, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func hasLabel(slots []tactics.PositionSlot, label string) bool {
	for _, s := range slots {
		if s.Label == label {
			return true
		}
	}
	return false
}

// --- HTTP handlers ---

func (s *HistoryService) GetHistory(c *fiber.Ctx) error {
	history, err := s.History(c.UserContext(), ownerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(history)
}

func (s *HistoryService) DeleteHistory(c *fiber.Ctx) error {
	if err := s.ClearHistory(c.UserContext(), ownerID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HistoryService) LoadHistoryHandler(c *fiber.Ctx) error {
	ws, err := s.LoadHistoryItem(c.UserContext(), ownerID(c), c.Params("id"))
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ws)
}

func (s *HistoryService) GetSaved(c *fiber.Ctx) error {
	saved, err := s.Saved(c.UserContext(), ownerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(saved)
}

func (s *HistoryService) SaveCurrentHandler(c *fiber.Ctx) error {
	item, err := s.SaveCurrent(c.UserContext(), ownerID(c))
	if errors.Is(err, ErrNothingToSave) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("✅ [HISTORY] Saved %s (%s vs %s) for %s", item.Formation, item.Team, item.Opponent, ownerID(c))
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *HistoryService) LoadSavedHandler(c *fiber.Ctx) error {
	ws, err := s.LoadSaved(c.UserContext(), ownerID(c), c.Params("id"))
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ws)
}

func (s *HistoryService) DeleteSavedHandler(c *fiber.Ctx) error {
	if err := s.DeleteSaved(c.UserContext(), ownerID(c), c.Params("id")); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HistoryService) GetWorkspace(c *fiber.Ctx) error {
	ws, err := s.Workspace(c.UserContext(), ownerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ws)
}

func (s *HistoryService) PatchWorkspace(c *fiber.Ctx) error {
	var patch WorkspacePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	ws, err := s.UpdateWorkspace(c.UserContext(), ownerID(c), patch)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ws)
}

func (s *HistoryService) MovePlayerHandler(c *fiber.Ctx) error {
	var body tactics.Point
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	ws, err := s.MovePlayer(c.UserContext(), ownerID(c), c.Params("label"), body.X, body.Y)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ws)
}

func (s *HistoryService) GetLayout(c *fiber.Ctx) error {
	layout, err := s.Layout(c.UserContext(), ownerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(layout)
}

// GetFormationPositions serves the catalog layout for a formation label.
func GetFormationPositions(c *fiber.Ctx) error {
	label := c.Params("label")
	return c.JSON(Layout{Formation: tactics.Normalize(label), Positions: tactics.PositionsFor(label)})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"stattact-service/tactics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ObjectUploader stores a public object and returns its URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// ShareLinks is a published analysis and the intents to post it.
type ShareLinks struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`
}

type ShareService struct {
	History  *HistoryService
	Uploader ObjectUploader // nil when object storage is not configured
}

func NewShareService(history *HistoryService, uploader ObjectUploader) *ShareService {
	return &ShareService{History: history, Uploader: uploader}
}

var errSharingDisabled = errors.New("sharing is not configured")

// Share uploads the current workspace analysis as markdown.
func (s *ShareService) Share(ctx context.Context, owner string) (*ShareLinks, error) {
	if s.Uploader == nil {
		return nil, errSharingDisabled
	}
	ws, err := s.History.Workspace(ctx, owner)
	if err != nil {
		return nil, err
	}
	if ws.Team == "" || ws.Tactics == "" {
		return nil, fmt.Errorf("generate an analysis before sharing: %w", ErrInvalidInput)
	}

	text := ShareText(ws.Team, ws.Opponent, tactics.ExtractFormation(ws.Tactics))
	key := fmt.Sprintf("shares/%s-%s.md", slug.Make(ws.Team+" vs "+ws.Opponent), uuid.NewString()[:8])
	doc := "# " + text + "\n\n" + strings.TrimSpace(ws.Tactics) + "\n"

	link, err := s.Uploader.Upload(ctx, key, "text/markdown; charset=utf-8", []byte(doc))
	if err != nil {
		return nil, err
	}
	return IntentLinks(link, text), nil
}

// ShareText is the headline posted with a shared analysis.
func ShareText(team, opponent, formation string) string {
	return fmt.Sprintf("%s vs %s: %s Formation Analysis", team, opponent, formation)
}

func IntentLinks(link, text string) *ShareLinks {
	u, t := url.QueryEscape(link), url.QueryEscape(text)
	return &ShareLinks{
		URL:      link,
		Text:     text,
		Twitter:  "https://twitter.com/intent/tweet?text=" + t + "&url=" + u,
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + u + "&quote=" + t,
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + u,
	}
}

func (s *ShareService) ShareAnalysis(c *fiber.Ctx) error {
	links, err := s.Share(c.UserContext(), ownerID(c))
	switch {
	case errors.Is(err, errSharingDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		status := errorStatus(err)
		if status == fiber.StatusInternalServerError {
			log.Printf("❌ [SHARE] Upload for %s failed: %v", ownerID(c), err)
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(links)
}

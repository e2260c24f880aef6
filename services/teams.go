package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"stattact-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/unidecode"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// FallbackTeams is served when neither the cache, the database nor the
// backend can provide a list.
var FallbackTeams = []string{
	"Arsenal",
	"Chelsea",
	"Liverpool",
	"Manchester City",
	"Manchester United",
	"Tottenham",
	"Bayern Munich",
	"Borussia Dortmund",
	"Barcelona",
	"Real Madrid",
	"PSG",
	"AC Milan",
	"Inter Milan",
	"Juventus",
}

const (
	teamsCacheKey = "teams:list"
	teamsCacheTTL = time.Hour
)

// TeamCache stores the resolved team list.
type TeamCache interface {
	GetTeams(ctx context.Context) ([]string, bool, error)
	SetTeams(ctx context.Context, teams []string) error
}

// RedisTeamCache keeps the list as one JSON value with a TTL.
type RedisTeamCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTeamCache(client *redis.Client) *RedisTeamCache {
	return &RedisTeamCache{Client: client, TTL: teamsCacheTTL}
}

func (c *RedisTeamCache) GetTeams(ctx context.Context) ([]string, bool, error) {
	raw, err := c.Client.Get(ctx, teamsCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", teamsCacheKey, err)
	}
	var teams []string
	if err := json.Unmarshal([]byte(raw), &teams); err != nil {
		return nil, false, fmt.Errorf("decode cached teams: %w", err)
	}
	return teams, len(teams) > 0, nil
}

func (c *RedisTeamCache) SetTeams(ctx context.Context, teams []string) error {
	data, err := json.Marshal(teams)
	if err != nil {
		return err
	}
	if err := c.Client.Set(ctx, teamsCacheKey, data, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", teamsCacheKey, err)
	}
	return nil
}

// Invalidate drops the cached list so the next read goes to the database.
func (c *RedisTeamCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, teamsCacheKey).Err()
}

// TeamDirectory resolves the selectable team list. Each source that fails is
// logged and skipped; the hardcoded list always answers last.
type TeamDirectory struct {
	DB      *gorm.DB       // optional
	Cache   TeamCache      // optional
	Backend *BackendClient // optional
}

func NewTeamDirectory(db *gorm.DB, cache TeamCache, backend *BackendClient) *TeamDirectory {
	return &TeamDirectory{DB: db, Cache: cache, Backend: backend}
}

// Teams returns the list and the name of the source that produced it.
func (d *TeamDirectory) Teams(ctx context.Context) ([]string, string) {
	if d.Cache != nil {
		teams, ok, err := d.Cache.GetTeams(ctx)
		if err != nil {
			log.Printf("⚠️ [TEAMS] Cache read failed: %v", err)
		} else if ok {
			return teams, "cache"
		}
	}

	if d.DB != nil {
		var rows []models.Team
		if err := d.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
			log.Printf("⚠️ [TEAMS] DB read failed: %v", err)
		} else if len(rows) > 0 {
			teams := make([]string, len(rows))
			for i, r := range rows {
				teams[i] = r.Name
			}
			d.remember(ctx, teams)
			return teams, "db"
		}
	}

	if d.Backend != nil {
		remote, err := d.Backend.FetchTeams(ctx)
		if err != nil {
			log.Printf("⚠️ [TEAMS] Backend fetch failed: %v", err)
		} else if teams := TeamNames(remote); len(teams) > 0 {
			d.remember(ctx, teams)
			return teams, "backend"
		}
	}

	out := make([]string, len(FallbackTeams))
	copy(out, FallbackTeams)
	return out, "fallback"
}

func (d *TeamDirectory) remember(ctx context.Context, teams []string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.SetTeams(ctx, teams); err != nil {
		log.Printf("⚠️ [TEAMS] Cache write failed: %v", err)
	}
}

// Search filters the list by an accent- and case-insensitive substring.
func (d *TeamDirectory) Search(ctx context.Context, q string) []string {
	teams, _ := d.Teams(ctx)
	key := SearchKey(q)
	if key == "" {
		return teams
	}
	out := []string{}
	for _, t := range teams {
		if strings.Contains(SearchKey(t), key) {
			out = append(out, t)
		}
	}
	return out
}

// Canonical returns the listed spelling of each name when one matches it
// ignoring accents and case, otherwise the trimmed input. The list is
// resolved once for all names.
func (d *TeamDirectory) Canonical(ctx context.Context, names ...string) []string {
	out := make([]string, len(names))
	var teams []string
	resolved := false
	for i, name := range names {
		name = strings.TrimSpace(name)
		out[i] = name
		key := SearchKey(name)
		if key == "" {
			continue
		}
		if !resolved {
			teams, _ = d.Teams(ctx)
			resolved = true
		}
		for _, t := range teams {
			if SearchKey(t) == key {
				out[i] = t
				break
			}
		}
	}
	return out
}

// SearchKey folds a team name for comparison: "Bayern München" and
// "bayern munchen" share a key.
func SearchKey(name string) string {
	folded := unidecode.Unidecode(strings.TrimSpace(name))
	return strings.Join(strings.Fields(cases.Fold().String(folded)), " ")
}

// DisplayName title-cases names that arrive entirely in lower case.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name != strings.ToLower(name) {
		return name
	}
	return cases.Title(language.English).String(name)
}

// TeamNames dedupes backend entries by search key and sorts them.
func TeamNames(remote []BackendTeam) []string {
	seen := make(map[string]bool, len(remote))
	out := make([]string, 0, len(remote))
	for _, t := range remote {
		name := DisplayName(t.Name)
		key := SearchKey(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FetchTeams answers GET /fetch-teams in the backend's shape.
func (d *TeamDirectory) FetchTeams(c *fiber.Ctx) error {
	var teams []string
	if q := c.Query("q"); q != "" {
		teams = d.Search(c.UserContext(), q)
	} else {
		teams, _ = d.Teams(c.UserContext())
	}
	out := make([]BackendTeam, len(teams))
	for i, t := range teams {
		out[i] = BackendTeam{Name: t}
	}
	return c.JSON(fiber.Map{"teams": out})
}

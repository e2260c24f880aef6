package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	teams  []string
	getErr error
	sets   [][]string
}

func (f *fakeCache) GetTeams(context.Context) ([]string, bool, error) {
	return f.teams, len(f.teams) > 0, f.getErr
}

func (f *fakeCache) SetTeams(_ context.Context, teams []string) error {
	f.sets = append(f.sets, teams)
	return nil
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, SearchKey("Bayern München"), SearchKey("bayern  munchen "))
	assert.Equal(t, "atletico madrid", SearchKey("Atlético Madrid"))
	assert.Empty(t, SearchKey("   "))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Real Madrid", DisplayName("real madrid"))
	assert.Equal(t, "PSG", DisplayName("PSG"))
	assert.Equal(t, "AC Milan", DisplayName(" AC Milan "))
}

func TestTeamNames_DedupesAndSorts(t *testing.T) {
	got := TeamNames([]BackendTeam{{Name: "chelsea"}, {Name: "Arsenal"}, {Name: "Chelsea"}, {Name: ""}})
	assert.Equal(t, []string{"Arsenal", "Chelsea"}, got)
}

func TestTeams_FallbackWhenNoSources(t *testing.T) {
	teams, source := NewTeamDirectory(nil, nil, nil).Teams(context.Background())
	assert.Equal(t, "fallback", source)
	assert.Len(t, teams, 14)
	assert.Equal(t, "Arsenal", teams[0])
	assert.Equal(t, "Juventus", teams[13])
}

func TestTeams_CacheHit(t *testing.T) {
	cache := &fakeCache{teams: []string{"Ajax"}}
	teams, source := NewTeamDirectory(nil, cache, nil).Teams(context.Background())
	assert.Equal(t, "cache", source)
	assert.Equal(t, []string{"Ajax"}, teams)
}

func TestTeams_BackendResultIsCached(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis down")}
	backend := backendReturning(t, 200, `{"teams":[{"name":"Napoli"},{"name":"Roma"}]}`)

	teams, source := NewTeamDirectory(nil, cache, backend).Teams(context.Background())
	assert.Equal(t, "backend", source)
	assert.Equal(t, []string{"Napoli", "Roma"}, teams)
	require.Len(t, cache.sets, 1)
	assert.Equal(t, teams, cache.sets[0])
}

func TestTeams_BackendFailureFallsBack(t *testing.T) {
	backend := backendReturning(t, 503, `down`)
	_, source := NewTeamDirectory(nil, nil, backend).Teams(context.Background())
	assert.Equal(t, "fallback", source)
}

func TestTeams_SearchAndCanonical(t *testing.T) {
	d := NewTeamDirectory(nil, &fakeCache{teams: []string{"Bayern München", "Borussia Dortmund"}}, nil)
	ctx := context.Background()

	assert.Equal(t, []string{"Bayern München"}, d.Search(ctx, "munchen"))
	assert.Equal(t, []string{"Bayern München", "Unlisted FC", ""},
		d.Canonical(ctx, "BAYERN MUNCHEN", " Unlisted FC ", "  "))
}

func TestFetchTeamsRoute(t *testing.T) {
	d := NewTeamDirectory(nil, nil, nil)
	app := newTestApp()
	app.Get("/fetch-teams", d.FetchTeams)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/fetch-teams?q=milan", nil))
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"teams":[{"name":"AC Milan"},{"name":"Inter Milan"}]}`, body)
}

package services

import (
	"context"
	"net/http/httptest"
	"testing"

	"stattact-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	lb := NewLeaderboardService(db)

	require.NoError(t, lb.Seed(ctx))
	require.NoError(t, lb.Seed(ctx), "seeding twice is a no-op")

	top, err := lb.Top(ctx, 100)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, "TacticalMaster", top[0].Username)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "TacticalInnovator", top[9].Username)

	require.NoError(t, lb.RecordResult(ctx, "u-1", "newcomer", models.ResultWin))
	require.NoError(t, lb.RecordResult(ctx, "u-1", "newcomer", models.ResultDraw))
	require.NoError(t, lb.RecordResult(ctx, "u-1", "newcomer", models.ResultLoss))
	assert.ErrorIs(t, lb.RecordResult(ctx, "u-1", "newcomer", "forfeit"), ErrInvalidInput)

	var me models.LeaderboardEntry
	require.NoError(t, db.Where("external_user_id = ?", "u-1").First(&me).Error)
	assert.Equal(t, int64(4), me.Points)
	assert.Equal(t, int64(1), me.Wins)
	assert.Equal(t, int64(1), me.Draws)
	assert.Equal(t, int64(1), me.Losses)
	assert.Zero(t, me.Rank, "rank waits for the recompute job")

	changed, err := lb.RecomputeRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	require.NoError(t, db.Where("external_user_id = ?", "u-1").First(&me).Error)
	assert.Equal(t, 11, me.Rank)
}

func TestCommunity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, _ := newHistory()
	cs := NewCommunityService(db, h)

	require.NoError(t, cs.Seed(ctx))
	list, err := cs.List(ctx, "popular", 10)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "High Pressing Counter Attack", list[0].Title)

	viewed, err := cs.View(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1206), viewed.Views)

	liked, err := cs.Like(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(343), liked.Likes)

	_, err = cs.Like(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cs.Like(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.RecordResult(ctx, "user-1", "Arsenal", "Chelsea", analysis("3-4-3"))
	require.NoError(t, err)
	saved, err := h.SaveCurrent(ctx, "user-1")
	require.NoError(t, err)

	pub, err := cs.Publish(ctx, "user-1", "user-1", "coach", saved.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Arsenal vs Chelsea: 3-4-3", pub.Title)
	assert.Equal(t, "3-4-3", pub.Formation)

	_, err = cs.Publish(ctx, "user-2", "user-2", "thief", saved.ID, "mine")
	assert.ErrorIs(t, err, ErrNotFound, "only the owner's saved formations can be published")

	app := newTestApp()
	app.Get("/community", cs.ListCommunity)
	app.Get("/community/:id", cs.GetCommunity)
	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/community", nil))
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, body, "Arsenal vs Chelsea: 3-4-3")
	resp, _ = doRequest(t, app, httptest.NewRequest("GET", "/community/00000000-0000-0000-0000-000000000000", nil))
	assert.Equal(t, 404, resp.StatusCode)
}

package tactics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_Invariants(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		res := Simulate(NewSource(seed), "Arsenal", "Chelsea")

		require.Equal(t, 100, res.Stats.Possession.Team+res.Stats.Possession.Opponent, "seed %d", seed)
		require.LessOrEqual(t, res.Stats.ShotsOnTarget.Team, res.Stats.Shots.Team, "seed %d", seed)
		require.LessOrEqual(t, res.Stats.ShotsOnTarget.Opponent, res.Stats.Shots.Opponent, "seed %d", seed)

		require.GreaterOrEqual(t, res.Score.Team, 0)
		require.LessOrEqual(t, res.Score.Team, 4)
		require.GreaterOrEqual(t, res.Score.Opponent, 0)
		require.LessOrEqual(t, res.Score.Opponent, 3)

		require.GreaterOrEqual(t, res.Stats.Possession.Team, 45)
		require.LessOrEqual(t, res.Stats.Possession.Team, 74)
		require.GreaterOrEqual(t, res.Stats.Fouls.Team, 5)
		require.LessOrEqual(t, res.Stats.Fouls.Team, 16)

		var teamGoals, opponentGoals, cards int
		goalMinute := map[int]bool{}
		for i, ev := range res.Events {
			require.GreaterOrEqual(t, ev.Minute, 1)
			require.LessOrEqual(t, ev.Minute, 90)
			if i > 0 {
				require.LessOrEqual(t, res.Events[i-1].Minute, ev.Minute, "seed %d: events out of order", seed)
			}
			switch ev.Kind {
			case EventGoal:
				require.False(t, goalMinute[ev.Minute], "seed %d: two goals in minute %d", seed, ev.Minute)
				goalMinute[ev.Minute] = true
				if ev.Side == SideTeam {
					teamGoals++
				} else {
					opponentGoals++
				}
			case EventYellowCard:
				cards++
			}
		}
		require.Equal(t, res.Score.Team, teamGoals, "seed %d", seed)
		require.Equal(t, res.Score.Opponent, opponentGoals, "seed %d", seed)
		require.GreaterOrEqual(t, cards, 1)
		require.LessOrEqual(t, cards, 5)
	}
}

func TestSimulate_FixedScoreline(t *testing.T) {
	rng := &scriptedSource{ints: []int{2, 1}, fallback: NewSource(42)}
	res := Simulate(rng, "Arsenal", "Chelsea")

	require.Equal(t, Pair{Team: 2, Opponent: 1}, res.Score)

	var teamGoals, opponentGoals int
	for _, ev := range res.Events {
		if ev.Kind != EventGoal {
			continue
		}
		switch ev.Side {
		case SideTeam:
			teamGoals++
			assert.Contains(t, TeamPlayers, ev.Player)
			assert.Contains(t, ev.Description, "scores for Arsenal")
		case SideOpponent:
			opponentGoals++
			assert.Contains(t, OpponentPlayers, ev.Player)
			assert.Contains(t, ev.Description, "scores for Chelsea")
		}
	}
	assert.Equal(t, 2, teamGoals)
	assert.Equal(t, 1, opponentGoals)
	assert.GreaterOrEqual(t, len(res.Events), 3)
	assert.Equal(t, "win", res.Outcome())
}

func TestSimulate_AssistMatchesDescription(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		res := Simulate(NewSource(seed), "Home", "Away")
		for _, ev := range res.Events {
			if ev.Kind != EventGoal {
				continue
			}
			if ev.Assist != nil {
				assert.Contains(t, ev.Description, "(assist: "+*ev.Assist+")")
			} else {
				assert.NotContains(t, ev.Description, "assist")
			}
		}
	}
}

func TestSimulate_CardsAfterGoalsInSameMinute(t *testing.T) {
	events := []MatchEvent{}
	for seed := int64(0); seed < 300 && len(events) == 0; seed++ {
		res := Simulate(NewSource(seed), "A", "B")
		for i := 1; i < len(res.Events); i++ {
			prev, cur := res.Events[i-1], res.Events[i]
			if prev.Minute == cur.Minute && prev.Kind != cur.Kind {
				events = append(events, prev, cur)
				break
			}
		}
	}
	if len(events) == 0 {
		t.Skip("no seed produced a goal and a card in the same minute")
	}
	assert.Equal(t, EventGoal, events[0].Kind)
	assert.Equal(t, EventYellowCard, events[1].Kind)
}

func TestSimulate_GoallessDraw(t *testing.T) {
	rng := &scriptedSource{ints: []int{0, 0}, fallback: NewSource(3)}
	res := Simulate(rng, "A", "B")

	assert.Equal(t, "draw", res.Outcome())
	for _, ev := range res.Events {
		assert.Equal(t, EventYellowCard, ev.Kind)
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "loss", SimulationResult{Score: Pair{Team: 0, Opponent: 2}}.Outcome())
	assert.Equal(t, "draw", SimulationResult{Score: Pair{Team: 1, Opponent: 1}}.Outcome())
}

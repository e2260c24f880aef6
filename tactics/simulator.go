package tactics

import (
	"fmt"
	"sort"
)

// Side identifies which club an event or stat belongs to.
type Side string

const (
	SideTeam     Side = "team"
	SideOpponent Side = "opponent"
)

// EventKind is the type of a timeline entry.
type EventKind string

const (
	EventGoal       EventKind = "goal"
	EventYellowCard EventKind = "yellowCard"
)

const (
	matchMinutes = 90
	assistChance = 0.7
	maxCards     = 5
)

// Surname pools used for scorers, assisters and bookings.
var (
	TeamPlayers = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
		"Miller", "Davis", "Rodriguez", "Martinez", "Hernandez",
	}
	OpponentPlayers = []string{
		"Taylor", "Anderson", "Thomas", "Jackson", "White", "Harris",
		"Martin", "Thompson", "Moore", "Young", "Allen",
	}
)

// Pair is a team/opponent value pair.
type Pair struct {
	Team     int `json:"team"`
	Opponent int `json:"opponent"`
}

type Stats struct {
	Possession    Pair `json:"possession"`
	Shots         Pair `json:"shots"`
	ShotsOnTarget Pair `json:"shotsOnTarget"`
	Corners       Pair `json:"corners"`
	Fouls         Pair `json:"fouls"`
	YellowCards   Pair `json:"yellowCards"`
	RedCards      Pair `json:"redCards"`
}

type MatchEvent struct {
	Minute      int       `json:"minute"`
	Side        Side      `json:"team"`
	Kind        EventKind `json:"type"`
	Player      string    `json:"player"`
	Assist      *string   `json:"assist"`
	Description string    `json:"description"`
}

// SimulationResult is one mock match outcome.
type SimulationResult struct {
	Score  Pair         `json:"score"`
	Stats  Stats        `json:"stats"`
	Events []MatchEvent `json:"events"`
}

// Outcome returns "win", "draw" or "loss" from the team's point of view.
func (r SimulationResult) Outcome() string {
	switch {
	case r.Score.Team > r.Score.Opponent:
		return "win"
	case r.Score.Team < r.Score.Opponent:
		return "loss"
	}
	return "draw"
}

// Simulate produces a pseudo-random scoreline, match statistics and a
// timeline whose goal events agree with the scoreline.
func Simulate(rng Source, team, opponent string) SimulationResult {
	score := Pair{
		Team:     rng.Intn(5),
		Opponent: rng.Intn(4),
	}

	possession := between(rng, 45, 74)
	shotsTeam := between(rng, 8, 19)
	shotsOpponent := between(rng, 5, 14)

	// ratio < 1, so on-target can never exceed shots
	onTargetTeam := int(float64(shotsTeam) * (0.4 + rng.Float64()*0.3))
	onTargetOpponent := int(float64(shotsOpponent) * (0.3 + rng.Float64()*0.4))

	stats := Stats{
		Possession:    Pair{Team: possession, Opponent: 100 - possession},
		Shots:         Pair{Team: shotsTeam, Opponent: shotsOpponent},
		ShotsOnTarget: Pair{Team: onTargetTeam, Opponent: onTargetOpponent},
		Corners:       Pair{Team: rng.Intn(10), Opponent: rng.Intn(8)},
		Fouls:         Pair{Team: between(rng, 5, 16), Opponent: between(rng, 5, 16)},
		YellowCards:   Pair{Team: rng.Intn(3), Opponent: rng.Intn(4)},
		RedCards:      Pair{Team: rng.Intn(2), Opponent: rng.Intn(2)},
	}

	return SimulationResult{
		Score:  score,
		Stats:  stats,
		Events: matchEvents(rng, team, opponent, score),
	}
}

func matchEvents(rng Source, team, opponent string, score Pair) []MatchEvent {
	events := make([]MatchEvent, 0, score.Team+score.Opponent+maxCards)

	var teamGoals, opponentGoals int
	for _, minute := range goalMinutes(rng, score.Team+score.Opponent) {
		// Lean towards whichever side still owes goals; once one side is
		// exhausted the rest are forced onto the other.
		isTeamGoal := teamGoals < score.Team &&
			(opponentGoals >= score.Opponent || rng.Float64() > 0.5)

		if isTeamGoal {
			events = append(events, goalEvent(rng, minute, SideTeam, team, TeamPlayers))
			teamGoals++
		} else if opponentGoals < score.Opponent {
			events = append(events, goalEvent(rng, minute, SideOpponent, opponent, OpponentPlayers))
			opponentGoals++
		}
	}

	cards := between(rng, 1, maxCards)
	for i := 0; i < cards; i++ {
		side, club, pool := SideOpponent, opponent, OpponentPlayers
		if rng.Float64() > 0.5 {
			side, club, pool = SideTeam, team, TeamPlayers
		}
		minute := between(rng, 1, matchMinutes)
		player := pool[rng.Intn(len(pool))]
		events = append(events, MatchEvent{
			Minute:      minute,
			Side:        side,
			Kind:        EventYellowCard,
			Player:      player,
			Description: fmt.Sprintf("Yellow card for %s (%s)", player, club),
		})
	}

	// Stable: goals keep precedence over cards booked in the same minute.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})
	return events
}

// goalMinutes draws n distinct minutes in 1..90, ascending.
func goalMinutes(rng Source, n int) []int {
	seen := make(map[int]bool, n)
	minutes := make([]int, 0, n)
	for len(minutes) < n {
		m := between(rng, 1, matchMinutes)
		if seen[m] {
			continue
		}
		seen[m] = true
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)
	return minutes
}

func goalEvent(rng Source, minute int, side Side, club string, pool []string) MatchEvent {
	scorer := pool[rng.Intn(len(pool))]
	assister := pool[rng.Intn(len(pool))]

	ev := MatchEvent{
		Minute:      minute,
		Side:        side,
		Kind:        EventGoal,
		Player:      scorer,
		Description: fmt.Sprintf("%s scores for %s!", scorer, club),
	}
	if rng.Float64() < assistChance {
		ev.Assist = &assister
		ev.Description = fmt.Sprintf("%s scores for %s (assist: %s)!", scorer, club, assister)
	}
	return ev
}

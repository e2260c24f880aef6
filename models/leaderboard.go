package models

import (
	"time"

	"gorm.io/gorm"
)

// Result values recorded against a leaderboard entry.
const (
	ResultWin  = "win"
	ResultDraw = "draw"
	ResultLoss = "loss"
)

// LeaderboardEntry is a user's seasonal standing, denormalized for reads.
type LeaderboardEntry struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"-"` // Supabase user id, "seed:<name>" for seeded rows
	Username       string `gorm:"index;not null" json:"user"`

	Points int64 `json:"points" gorm:"default:0"`
	Wins   int64 `json:"wins" gorm:"default:0"`
	Draws  int64 `json:"draws" gorm:"default:0"`
	Losses int64 `json:"losses" gorm:"default:0"`
	Rank   int   `json:"rank" gorm:"default:0;index"`

	LastResultAt *time.Time `json:"last_result_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// LeaderboardSeed is the initial season table.
var LeaderboardSeed = []LeaderboardEntry{
	{Username: "TacticalMaster", Points: 2450, Wins: 48, Draws: 15, Losses: 7},
	{Username: "FootballGenius", Points: 2340, Wins: 45, Draws: 12, Losses: 13},
	{Username: "StrategyKing", Points: 2290, Wins: 42, Draws: 18, Losses: 10},
	{Username: "FormationGuru", Points: 2180, Wins: 40, Draws: 13, Losses: 17},
	{Username: "TacticsPro", Points: 2120, Wins: 38, Draws: 16, Losses: 16},
	{Username: "SoccerScientist", Points: 2050, Wins: 36, Draws: 14, Losses: 20},
	{Username: "CoachElite", Points: 1980, Wins: 35, Draws: 10, Losses: 25},
	{Username: "FootballDr", Points: 1920, Wins: 33, Draws: 12, Losses: 25},
	{Username: "FormationWizard", Points: 1870, Wins: 31, Draws: 16, Losses: 23},
	{Username: "TacticalInnovator", Points: 1820, Wins: 30, Draws: 15, Losses: 25},
}

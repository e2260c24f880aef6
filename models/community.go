package models

// CommunityFormation is a formation published to the community feed.
type CommunityFormation struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index" json:"external_user_id,omitempty"` // empty for seeded entries
	Creator        string `gorm:"not null" json:"creator"`
	Team           string `gorm:"not null" json:"team"`
	Opponent       string `json:"opponent,omitempty"`
	Formation      string `gorm:"type:varchar(16);not null" json:"formation"`
	Title          string `gorm:"not null" json:"title"`
	Tactics        string `gorm:"type:text" json:"tactics,omitempty"`
	Likes          int64  `gorm:"default:0" json:"likes"`
	Views          int64  `gorm:"default:0" json:"views"`

	Timestamps
}

// CommunitySeed is the feed shown before anyone has published.
var CommunitySeed = []CommunityFormation{
	{Creator: "TacticalGenius", Team: "Liverpool", Formation: "4-3-3", Title: "High Pressing Counter Attack", Likes: 342, Views: 1205},
	{Creator: "FootballMind", Team: "Bayern Munich", Formation: "4-2-3-1", Title: "Possession Based Dominance", Likes: 287, Views: 932},
	{Creator: "SoccerStrategist", Team: "Manchester City", Formation: "3-5-2", Title: "Fluid Positional Play", Likes: 254, Views: 876},
	{Creator: "TikiTaka", Team: "Barcelona", Formation: "4-3-3", Title: "Modern Tiki-Taka", Likes: 198, Views: 752},
}

package domain

import (
	"time"
)

// Team is a ranked participant. The tally only moves through the vote
// authorization engine; admin issuance may create or rename a team but never
// touches votes.
type Team struct {
	TeamID        string     `json:"team_id"`
	TeamName      string     `json:"team_name"`
	Votes         int        `json:"votes"`
	CreatedAt     time.Time  `json:"created_at"`
	QRGeneratedBy string     `json:"qr_generated_by,omitempty"`
	QRGeneratedAt *time.Time `json:"qr_generated_at,omitempty"`
}

// TeamRanking is a team with its computed rank and vote share.
type TeamRanking struct {
	Team
	Rank       int     `json:"rank"`
	Percentage float64 `json:"percentage"`
}

// Rankings is the public live-ranking view.
type Rankings struct {
	Teams      []TeamRanking `json:"teams"`
	TotalVotes int           `json:"total_votes"`
	LastUpdate time.Time     `json:"last_update"`
}

// TeamRegistration is returned when admin issuance registers a team; the
// voting URL is what gets encoded into the team's QR code by the frontend.
type TeamRegistration struct {
	Team      Team   `json:"team"`
	VotingURL string `json:"voting_url"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	TotalVotes  int       `json:"total_votes"`
	ActiveCodes int       `json:"active_codes"`
	TotalTeams  int       `json:"total_teams"`
	TopTeam     *Team     `json:"top_team,omitempty"`
	BottomTeam  *Team     `json:"bottom_team,omitempty"`
	LastUpdate  time.Time `json:"last_update"`
}

package domain

import (
	"errors"
	"time"
)

// Vote is the append-only audit record written alongside every accepted
// vote. Never updated after creation.
type Vote struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	TeamName string    `json:"team_name"`
	Code     string    `json:"code"`
	VotedAt  time.Time `json:"voted_at"`
}

// VoteRequest is a vote submission from the voting page.
type VoteRequest struct {
	Code     string `json:"code"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

// VoteReceipt is returned for an accepted vote.
type VoteReceipt struct {
	VoteID   string    `json:"vote_id"`
	TeamID   string    `json:"team_id"`
	TeamName string    `json:"team_name"`
	VotedAt  time.Time `json:"voted_at"`
	Message  string    `json:"message"`
}

// Sentinel errors surfaced by the commit transaction. The engine maps them
// onto its denial taxonomy.
var (
	// ErrCodeVanished: the code row disappeared between the authorization
	// checks and the commit read.
	ErrCodeVanished = errors.New("voting code vanished during commit")

	// ErrTeamAlreadyCounted: the in-transaction re-read of used_teams found
	// the team already recorded (a concurrent submitter won the race).
	ErrTeamAlreadyCounted = errors.New("team already counted for this code")

	// ErrCodeExists: issuance collided with an existing code value.
	ErrCodeExists = errors.New("voting code already exists")
)

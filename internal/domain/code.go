package domain

import (
	"time"
)

// VotingCode is a short-lived shared secret handed to an attendee at the
// entrance. The 2-3 digit value doubles as the document key in the
// voting_codes collection.
type VotingCode struct {
	Code         string     `json:"code"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UsedTeams    []string   `json:"used_teams"`
	LastVoteAt   *time.Time `json:"last_vote_at,omitempty"`
	GeneratedBy  string     `json:"generated_by,omitempty"`
	GeneratedVia string     `json:"generated_via,omitempty"`
}

// Expired reports whether the code may no longer authorize votes. A missing
// expiry is treated as expired (fail closed).
func (c *VotingCode) Expired(now time.Time) bool {
	return c.ExpiresAt == nil || now.After(*c.ExpiresAt)
}

// HasVotedFor reports whether teamID has already consumed this code.
func (c *VotingCode) HasVotedFor(teamID string) bool {
	for _, id := range c.UsedTeams {
		if id == teamID {
			return true
		}
	}
	return false
}

// CooldownRemaining returns the whole seconds a caller still has to wait
// before this code may vote again, rounded up. Zero means the code is free
// to vote; a code that has never voted is always free (fail open).
func (c *VotingCode) CooldownRemaining(now time.Time, cooldown time.Duration) int {
	if c.LastVoteAt == nil {
		return 0
	}
	elapsed := now.Sub(*c.LastVoteAt)
	if elapsed >= cooldown {
		return 0
	}
	remaining := cooldown - elapsed
	secs := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		secs++
	}
	return secs
}

// CodeSummary is the admin-facing view of a code with its computed status.
type CodeSummary struct {
	VotingCode
	Status    string `json:"status"` // "active" or "expired"
	VotesUsed int    `json:"votes_used"`
}

// Code status values.
const (
	CodeStatusActive  = "active"
	CodeStatusExpired = "expired"
)

// Provenance values recorded on issued codes. GeneratedBy tracks the
// deployment origin, GeneratedVia the issuance path. Informational only.
const (
	GeneratedViaManual = "manual"
	GeneratedViaDevice = "device"
)

package social

import (
	"time"

	"github.com/wfunc/gamestation/models"
)

// DefaultChallengeTTL is how long a challenge can be accepted.
const DefaultChallengeTTL = 24 * time.Hour

// NewChallenge builds a pending challenge. Timestamps are microseconds.
func NewChallenge(id, challenger, opponent string, game models.GameType, wager uint64, now int64, ttl time.Duration) (*models.Challenge, error) {
	if challenger == opponent {
		return nil, ErrSelfChallenge
	}
	if !game.Valid() {
		return nil, ErrUnsupportedGame
	}
	return &models.Challenge{
		ID:         id,
		Challenger: challenger,
		Opponent:   opponent,
		GameType:   game,
		Wager:      wager,
		Status:     models.ChallengePending,
		CreatedAt:  now,
		ExpiresAt:  now + ttl.Microseconds(),
	}, nil
}

// Accept marks the challenge accepted. Only the opponent may accept, and
// only strictly before the deadline.
func Accept(c *models.Challenge, owner string, now int64) error {
	switch {
	case c.Opponent != owner:
		return ErrNotOpponent
	case c.Status != models.ChallengePending:
		return ErrNotPending
	case now >= c.ExpiresAt:
		return ErrExpired
	}
	c.Status = models.ChallengeAccepted
	return nil
}

// Decline is allowed to either side while the challenge is pending.
func Decline(c *models.Challenge, owner string) error {
	if owner != c.Opponent && owner != c.Challenger {
		return ErrNotParticipant
	}
	if c.Status != models.ChallengePending {
		return ErrNotPending
	}
	c.Status = models.ChallengeDeclined
	return nil
}

// Complete closes an accepted challenge once its match has ended.
func Complete(c *models.Challenge) {
	if c.Status == models.ChallengeAccepted {
		c.Status = models.ChallengeCompleted
	}
}

package hub

import (
	"context"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/social"
)

func (h *Hub) createChallenge(a protocol.CreateChallenge, who string, now int64) error {
	c, err := social.NewChallenge(h.store.NextChallengeID(), who, a.Opponent, a.Game, a.Wager, now, h.challengeTTL)
	if err != nil {
		return err
	}
	h.store.AddChallenge(c)
	return nil
}

// acceptChallenge opens a two seat room for the challenge with the
// challenger as creator, then seats the opponent.
func (h *Hub) acceptChallenge(ctx context.Context, a protocol.AcceptChallenge, who string, now int64) error {
	c, ok := h.store.Challenges[a.ChallengeID]
	if !ok {
		return ErrChallengeNotFound
	}
	if err := social.Accept(c, who, now); err != nil {
		return err
	}

	h.store.Profile(c.Challenger, now)
	id := h.store.NextRoomID(c.GameType)
	h.openRoom(ctx, id, c.GameType, models.ModeMultiplayer, c.Challenger, 2, c.Wager, now)
	c.RoomID = id
	h.store.RoomChallenges[id] = c.ID

	if err := h.joinRoom(id, c.Opponent, now); err != nil {
		logger.Log.Warnw("challenge opponent not seated", "challenge_id", c.ID, "room_id", id, "error", err)
	}
	return nil
}

func (h *Hub) declineChallenge(a protocol.DeclineChallenge, who string) error {
	c, ok := h.store.Challenges[a.ChallengeID]
	if !ok {
		return ErrChallengeNotFound
	}
	return social.Decline(c, who)
}

// completeChallenge closes the challenge linked to a finished room.
func (h *Hub) completeChallenge(roomID string) {
	id, ok := h.store.RoomChallenges[roomID]
	if !ok {
		return
	}
	if c, ok := h.store.Challenges[id]; ok && c.Status == models.ChallengeAccepted {
		social.Complete(c)
	}
}

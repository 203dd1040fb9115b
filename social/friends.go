// Package social keeps the friend graph and 1v1 challenges.
package social

import (
	"errors"

	"github.com/wfunc/gamestation/models"
)

var (
	ErrSelfRequest     = errors.New("cannot befriend yourself")
	ErrDuplicate       = errors.New("request already pending")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrNoRequest       = errors.New("no pending request")
	ErrNotParticipant  = errors.New("not a participant of the challenge")
	ErrNotOpponent     = errors.New("only the challenged player can accept")
	ErrNotPending      = errors.New("challenge is not pending")
	ErrExpired         = errors.New("challenge expired")
	ErrSelfChallenge   = errors.New("cannot challenge yourself")
	ErrUnsupportedGame = errors.New("unsupported game type")
)

// Graph holds friend edges and pending requests keyed by address. Requests
// are keyed by recipient.
type Graph struct {
	Friends  map[string][]models.FriendEntry
	Requests map[string][]models.FriendRequest
}

func NewGraph() *Graph {
	return &Graph{
		Friends:  make(map[string][]models.FriendEntry),
		Requests: make(map[string][]models.FriendRequest),
	}
}

func (g *Graph) AreFriends(a, b string) bool {
	for _, f := range g.Friends[a] {
		if f.Address == b {
			return true
		}
	}
	return false
}

func (g *Graph) hasRequest(to, from string) bool {
	for _, r := range g.Requests[to] {
		if r.From == from {
			return true
		}
	}
	return false
}

// SendRequest files a request from -> to. A second request from the same
// sender is ignored.
func (g *Graph) SendRequest(from, to string, now int64) error {
	switch {
	case from == to:
		return ErrSelfRequest
	case g.AreFriends(from, to):
		return ErrAlreadyFriends
	case g.hasRequest(to, from):
		return ErrDuplicate
	}
	g.Requests[to] = append(g.Requests[to], models.FriendRequest{From: from, To: to, SentAt: now})
	return nil
}

// Accept consumes the request from -> owner and links both sides.
func (g *Graph) Accept(owner, from string, now int64) error {
	if !g.removeRequest(owner, from) {
		return ErrNoRequest
	}
	g.link(owner, from, now)
	g.link(from, owner, now)
	return nil
}

// Reject drops the request without linking.
func (g *Graph) Reject(owner, from string) error {
	if !g.removeRequest(owner, from) {
		return ErrNoRequest
	}
	return nil
}

// Remove unlinks both sides.
func (g *Graph) Remove(owner, friend string) {
	g.unlink(owner, friend)
	g.unlink(friend, owner)
}

func (g *Graph) link(a, b string, now int64) {
	if g.AreFriends(a, b) {
		return
	}
	g.Friends[a] = append(g.Friends[a], models.FriendEntry{Address: b, Since: now})
}

func (g *Graph) unlink(a, b string) {
	list := g.Friends[a]
	out := list[:0]
	for _, f := range list {
		if f.Address != b {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		delete(g.Friends, a)
		return
	}
	g.Friends[a] = out
}

func (g *Graph) removeRequest(to, from string) bool {
	list := g.Requests[to]
	out := make([]models.FriendRequest, 0, len(list))
	removed := false
	for _, r := range list {
		if r.From == from {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		delete(g.Requests, to)
	} else {
		g.Requests[to] = out
	}
	return removed
}

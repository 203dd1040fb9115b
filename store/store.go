// Package store is the hub's state: every registry the hub owns, passed
// explicitly to the components that mutate it.
//
// The embedded RWMutex is taken by the runtime around each hub item (write)
// and by the query layer (read). Components that receive a *Store assume the
// caller already holds the right lock.
package store

import (
	"fmt"
	"sync"

	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/progression"
	"github.com/wfunc/gamestation/social"
)

type Store struct {
	sync.RWMutex

	Profiles map[string]*models.PlayerProfile
	Rooms    map[string]*models.GameRoom
	// ActiveRooms keeps listing order.
	ActiveRooms []string
	// RoomShards and ShardRooms are the two directions of the room <-> shard mapping.
	RoomShards map[string]string
	ShardRooms map[string]string

	Tournaments       map[string]*models.Tournament
	ActiveTournaments []string

	Challenges     map[string]*models.Challenge
	UserChallenges map[string][]string
	RoomChallenges map[string]string

	Social       *social.Graph
	Leaderboards map[string][]models.LeaderboardEntry

	RoomCounter       uint64
	TournamentCounter uint64
	ChallengeCounter  uint64
	TotalPlayers      uint64
	TotalGames        uint64
}

func New() *Store {
	return &Store{
		Profiles:       make(map[string]*models.PlayerProfile),
		Rooms:          make(map[string]*models.GameRoom),
		RoomShards:     make(map[string]string),
		ShardRooms:     make(map[string]string),
		Tournaments:    make(map[string]*models.Tournament),
		Challenges:     make(map[string]*models.Challenge),
		UserChallenges: make(map[string][]string),
		RoomChallenges: make(map[string]string),
		Social:         social.NewGraph(),
		Leaderboards:   make(map[string][]models.LeaderboardEntry),
	}
}

// Profile returns the profile for address, creating the default profile the
// first time an address is seen.
func (s *Store) Profile(address string, now int64) *models.PlayerProfile {
	if p, ok := s.Profiles[address]; ok {
		return p
	}
	p := progression.NewProfile(address, now)
	s.Profiles[address] = p
	s.TotalPlayers++
	return p
}

func (s *Store) NextRoomID(g models.GameType) string {
	id := fmt.Sprintf("room-%s-%d", g.Key(), s.RoomCounter)
	s.RoomCounter++
	return id
}

func (s *Store) NextTournamentID() string {
	id := fmt.Sprintf("tournament-%d", s.TournamentCounter)
	s.TournamentCounter++
	return id
}

func (s *Store) NextChallengeID() string {
	id := fmt.Sprintf("challenge-%d", s.ChallengeCounter)
	s.ChallengeCounter++
	return id
}

func (s *Store) AddActiveRoom(id string) {
	s.ActiveRooms = appendUnique(s.ActiveRooms, id)
}

func (s *Store) RemoveActiveRoom(id string) {
	s.ActiveRooms = remove(s.ActiveRooms, id)
}

func (s *Store) AddActiveTournament(id string) {
	s.ActiveTournaments = appendUnique(s.ActiveTournaments, id)
}

func (s *Store) RemoveActiveTournament(id string) {
	s.ActiveTournaments = remove(s.ActiveTournaments, id)
}

// MapShard records both directions of a room <-> shard mapping.
func (s *Store) MapShard(roomID, shard string) {
	s.RoomShards[roomID] = shard
	s.ShardRooms[shard] = roomID
}

// UnmapShard removes the mapping for roomID and returns the shard it pointed at.
func (s *Store) UnmapShard(roomID string) (string, bool) {
	shard, ok := s.RoomShards[roomID]
	if !ok {
		return "", false
	}
	delete(s.RoomShards, roomID)
	delete(s.ShardRooms, shard)
	return shard, true
}

func (s *Store) ShardFor(roomID string) (string, bool) {
	shard, ok := s.RoomShards[roomID]
	return shard, ok
}

func (s *Store) AddChallenge(c *models.Challenge) {
	s.Challenges[c.ID] = c
	s.UserChallenges[c.Challenger] = appendUnique(s.UserChallenges[c.Challenger], c.ID)
	s.UserChallenges[c.Opponent] = appendUnique(s.UserChallenges[c.Opponent], c.ID)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func remove(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

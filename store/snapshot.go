package store

import (
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/social"
)

// Counters groups the scalar counters of the store.
type Counters struct {
	Room         uint64 `json:"room"`
	Tournament   uint64 `json:"tournament"`
	Challenge    uint64 `json:"challenge"`
	TotalPlayers uint64 `json:"total_players"`
	TotalGames   uint64 `json:"total_games"`
}

// Snapshot is a deep copy of the store that persistence can write while the
// hub keeps running.
type Snapshot struct {
	Profiles          map[string]*models.PlayerProfile     `json:"profiles"`
	Rooms             map[string]*models.GameRoom          `json:"rooms"`
	ActiveRooms       []string                             `json:"active_rooms"`
	RoomShards        map[string]string                    `json:"room_shards"`
	Tournaments       map[string]*models.Tournament        `json:"tournaments"`
	ActiveTournaments []string                             `json:"active_tournaments"`
	Challenges        map[string]*models.Challenge         `json:"challenges"`
	UserChallenges    map[string][]string                  `json:"user_challenges"`
	RoomChallenges    map[string]string                    `json:"room_challenges"`
	Friends           map[string][]models.FriendEntry      `json:"friends"`
	FriendRequests    map[string][]models.FriendRequest    `json:"friend_requests"`
	Leaderboards      map[string][]models.LeaderboardEntry `json:"leaderboards"`
	Fingerprints      []string                             `json:"fingerprints,omitempty"`
	Counters          Counters                             `json:"counters"`
}

// Snapshot copies the store. The caller holds at least the read lock.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		Profiles:          make(map[string]*models.PlayerProfile, len(s.Profiles)),
		Rooms:             make(map[string]*models.GameRoom, len(s.Rooms)),
		ActiveRooms:       append([]string(nil), s.ActiveRooms...),
		RoomShards:        make(map[string]string, len(s.RoomShards)),
		Tournaments:       make(map[string]*models.Tournament, len(s.Tournaments)),
		ActiveTournaments: append([]string(nil), s.ActiveTournaments...),
		Challenges:        make(map[string]*models.Challenge, len(s.Challenges)),
		UserChallenges:    make(map[string][]string, len(s.UserChallenges)),
		RoomChallenges:    make(map[string]string, len(s.RoomChallenges)),
		Friends:           make(map[string][]models.FriendEntry, len(s.Social.Friends)),
		FriendRequests:    make(map[string][]models.FriendRequest, len(s.Social.Requests)),
		Leaderboards:      make(map[string][]models.LeaderboardEntry, len(s.Leaderboards)),
		Counters: Counters{
			Room:         s.RoomCounter,
			Tournament:   s.TournamentCounter,
			Challenge:    s.ChallengeCounter,
			TotalPlayers: s.TotalPlayers,
			TotalGames:   s.TotalGames,
		},
	}
	for k, v := range s.Profiles {
		snap.Profiles[k] = v.Clone()
	}
	for k, v := range s.Rooms {
		snap.Rooms[k] = v.Clone()
	}
	for k, v := range s.RoomShards {
		snap.RoomShards[k] = v
	}
	for k, v := range s.Tournaments {
		snap.Tournaments[k] = v.Clone()
	}
	for k, v := range s.Challenges {
		c := *v
		snap.Challenges[k] = &c
	}
	for k, v := range s.UserChallenges {
		snap.UserChallenges[k] = append([]string(nil), v...)
	}
	for k, v := range s.RoomChallenges {
		snap.RoomChallenges[k] = v
	}
	for k, v := range s.Social.Friends {
		snap.Friends[k] = append([]models.FriendEntry(nil), v...)
	}
	for k, v := range s.Social.Requests {
		snap.FriendRequests[k] = append([]models.FriendRequest(nil), v...)
	}
	for k, v := range s.Leaderboards {
		snap.Leaderboards[k] = append([]models.LeaderboardEntry(nil), v...)
	}
	return snap
}

// Restore builds a store from a snapshot. Shard mappings are not restored:
// shards live in process and do not survive a restart, so rooms that were
// mapped come back as hub-resident rooms.
func Restore(snap *Snapshot) *Store {
	s := New()
	if snap == nil {
		return s
	}
	for k, v := range snap.Profiles {
		s.Profiles[k] = v.Clone()
	}
	for k, v := range snap.Rooms {
		s.Rooms[k] = v.Clone()
	}
	s.ActiveRooms = append([]string(nil), snap.ActiveRooms...)
	for k, v := range snap.Tournaments {
		s.Tournaments[k] = v.Clone()
	}
	s.ActiveTournaments = append([]string(nil), snap.ActiveTournaments...)
	for k, v := range snap.Challenges {
		c := *v
		s.Challenges[k] = &c
	}
	for k, v := range snap.UserChallenges {
		s.UserChallenges[k] = append([]string(nil), v...)
	}
	for k, v := range snap.RoomChallenges {
		s.RoomChallenges[k] = v
	}
	s.Social = &social.Graph{
		Friends:  make(map[string][]models.FriendEntry, len(snap.Friends)),
		Requests: make(map[string][]models.FriendRequest, len(snap.FriendRequests)),
	}
	for k, v := range snap.Friends {
		s.Social.Friends[k] = append([]models.FriendEntry(nil), v...)
	}
	for k, v := range snap.FriendRequests {
		s.Social.Requests[k] = append([]models.FriendRequest(nil), v...)
	}
	for k, v := range snap.Leaderboards {
		s.Leaderboards[k] = append([]models.LeaderboardEntry(nil), v...)
	}
	s.RoomCounter = snap.Counters.Room
	s.TournamentCounter = snap.Counters.Tournament
	s.ChallengeCounter = snap.Counters.Challenge
	s.TotalPlayers = snap.Counters.TotalPlayers
	s.TotalGames = snap.Counters.TotalGames
	return s
}

package persistence

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"

	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/store"
)

// Index and counter names used in the index and counter tables.
const (
	indexActiveRooms       = "active_rooms"
	indexActiveTournaments = "active_tournaments"
	indexRoomChallenges    = "room_challenges"
	indexUserChallenges    = "user_challenges"

	counterRoom         = "room"
	counterTournament   = "tournament"
	counterChallenge    = "challenge"
	counterTotalPlayers = "total_players"
	counterTotalGames   = "total_games"
)

// snapshotRows is a snapshot flattened into table rows.
type snapshotRows struct {
	Profiles     []models.GormProfile
	Rooms        []models.GormRoom
	Tournaments  []models.GormTournament
	Challenges   []models.GormChallenge
	Social       []models.GormSocial
	Leaderboards []models.GormLeaderboard
	Indexes      []models.GormIndex
	Counters     []models.GormCounter
	Fingerprints []models.GormFingerprint
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toRows flattens snap. Rows are emitted in key order.
func toRows(snap *store.Snapshot) snapshotRows {
	var rows snapshotRows
	for _, k := range sortedKeys(snap.Profiles) {
		p := snap.Profiles[k]
		rows.Profiles = append(rows.Profiles, models.GormProfile{
			Address:    p.Address,
			Username:   p.Username,
			AvatarID:   p.AvatarID,
			Level:      p.Level,
			Experience: p.Experience,
			TotalGames: p.TotalGames,
			Stats:      mustJSON(p.Stats),
			JoinedAt:   p.JoinedAt,
		})
	}
	for _, k := range sortedKeys(snap.Rooms) {
		r := snap.Rooms[k]
		rows.Rooms = append(rows.Rooms, models.GormRoom{
			RoomID: r.ID,
			Status: string(r.Status),
			Shard:  snap.RoomShards[r.ID],
			Data:   mustJSON(r),
		})
	}
	for _, k := range sortedKeys(snap.Tournaments) {
		t := snap.Tournaments[k]
		rows.Tournaments = append(rows.Tournaments, models.GormTournament{
			TournamentID: t.ID,
			Status:       string(t.Status),
			Data:         mustJSON(t),
		})
	}
	for _, k := range sortedKeys(snap.Challenges) {
		c := snap.Challenges[k]
		rows.Challenges = append(rows.Challenges, models.GormChallenge{
			ChallengeID: c.ID,
			Status:      string(c.Status),
			Data:        mustJSON(c),
		})
	}

	addresses := make(map[string]struct{})
	for k := range snap.Friends {
		addresses[k] = struct{}{}
	}
	for k := range snap.FriendRequests {
		addresses[k] = struct{}{}
	}
	for _, addr := range sortedKeys(addresses) {
		rows.Social = append(rows.Social, models.GormSocial{
			Address:  addr,
			Friends:  mustJSON(snap.Friends[addr]),
			Requests: mustJSON(snap.FriendRequests[addr]),
		})
	}

	for _, k := range sortedKeys(snap.Leaderboards) {
		rows.Leaderboards = append(rows.Leaderboards, models.GormLeaderboard{
			Key:     k,
			Entries: mustJSON(snap.Leaderboards[k]),
		})
	}

	rows.Indexes = []models.GormIndex{
		{Name: indexActiveRooms, Items: mustJSON(snap.ActiveRooms)},
		{Name: indexActiveTournaments, Items: mustJSON(snap.ActiveTournaments)},
		{Name: indexRoomChallenges, Items: mustJSON(snap.RoomChallenges)},
		{Name: indexUserChallenges, Items: mustJSON(snap.UserChallenges)},
	}
	rows.Counters = []models.GormCounter{
		{Name: counterRoom, Value: snap.Counters.Room},
		{Name: counterTournament, Value: snap.Counters.Tournament},
		{Name: counterChallenge, Value: snap.Counters.Challenge},
		{Name: counterTotalPlayers, Value: snap.Counters.TotalPlayers},
		{Name: counterTotalGames, Value: snap.Counters.TotalGames},
	}
	for _, fp := range snap.Fingerprints {
		rows.Fingerprints = append(rows.Fingerprints, models.GormFingerprint{Fingerprint: fp})
	}
	return rows
}

// fromRows rebuilds a snapshot. Shard columns are ignored.
func fromRows(rows snapshotRows) (*store.Snapshot, error) {
	snap := &store.Snapshot{
		Profiles:       make(map[string]*models.PlayerProfile, len(rows.Profiles)),
		Rooms:          make(map[string]*models.GameRoom, len(rows.Rooms)),
		RoomShards:     make(map[string]string),
		Tournaments:    make(map[string]*models.Tournament, len(rows.Tournaments)),
		Challenges:     make(map[string]*models.Challenge, len(rows.Challenges)),
		UserChallenges: make(map[string][]string),
		RoomChallenges: make(map[string]string),
		Friends:        make(map[string][]models.FriendEntry),
		FriendRequests: make(map[string][]models.FriendRequest),
		Leaderboards:   make(map[string][]models.LeaderboardEntry, len(rows.Leaderboards)),
	}
	for _, row := range rows.Profiles {
		p := &models.PlayerProfile{
			Address:    row.Address,
			Username:   row.Username,
			AvatarID:   row.AvatarID,
			Level:      row.Level,
			Experience: row.Experience,
			TotalGames: row.TotalGames,
			JoinedAt:   row.JoinedAt,
		}
		if err := json.Unmarshal(row.Stats, &p.Stats); err != nil {
			return nil, err
		}
		if p.Stats == nil {
			p.Stats = make(map[models.GameType]*models.GameStats)
		}
		snap.Profiles[p.Address] = p
	}
	for _, row := range rows.Rooms {
		var r models.GameRoom
		if err := json.Unmarshal(row.Data, &r); err != nil {
			return nil, err
		}
		snap.Rooms[r.ID] = &r
	}
	for _, row := range rows.Tournaments {
		var t models.Tournament
		if err := json.Unmarshal(row.Data, &t); err != nil {
			return nil, err
		}
		snap.Tournaments[t.ID] = &t
	}
	for _, row := range rows.Challenges {
		var c models.Challenge
		if err := json.Unmarshal(row.Data, &c); err != nil {
			return nil, err
		}
		snap.Challenges[c.ID] = &c
	}
	for _, row := range rows.Social {
		var friends []models.FriendEntry
		var requests []models.FriendRequest
		if err := json.Unmarshal(row.Friends, &friends); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(row.Requests, &requests); err != nil {
			return nil, err
		}
		if len(friends) > 0 {
			snap.Friends[row.Address] = friends
		}
		if len(requests) > 0 {
			snap.FriendRequests[row.Address] = requests
		}
	}
	for _, row := range rows.Leaderboards {
		var entries []models.LeaderboardEntry
		if err := json.Unmarshal(row.Entries, &entries); err != nil {
			return nil, err
		}
		snap.Leaderboards[row.Key] = entries
	}
	for _, row := range rows.Indexes {
		var target interface{}
		switch row.Name {
		case indexActiveRooms:
			target = &snap.ActiveRooms
		case indexActiveTournaments:
			target = &snap.ActiveTournaments
		case indexRoomChallenges:
			target = &snap.RoomChallenges
		case indexUserChallenges:
			target = &snap.UserChallenges
		default:
			continue
		}
		if err := json.Unmarshal(row.Items, target); err != nil {
			return nil, err
		}
	}
	for _, row := range rows.Counters {
		switch row.Name {
		case counterRoom:
			snap.Counters.Room = row.Value
		case counterTournament:
			snap.Counters.Tournament = row.Value
		case counterChallenge:
			snap.Counters.Challenge = row.Value
		case counterTotalPlayers:
			snap.Counters.TotalPlayers = row.Value
		case counterTotalGames:
			snap.Counters.TotalGames = row.Value
		}
	}
	for _, row := range rows.Fingerprints {
		snap.Fingerprints = append(snap.Fingerprints, row.Fingerprint)
	}
	return snap, nil
}

// recordRow converts a finished match into its table row.
func recordRow(rec models.GameRecord) models.GormGameRecord {
	return models.GormGameRecord{
		RoomID:   rec.RoomID,
		GameType: string(rec.GameType),
		Winner:   rec.Winner,
		Players:  mustJSON(rec.Players),
		Result: mustJSON(map[string]interface{}{
			"scores":      rec.Scores,
			"moves":       rec.Moves,
			"final_state": rec.FinalState,
			"finished_at": rec.FinishedAt,
		}),
		Duration: rec.DurationSecs,
	}
}

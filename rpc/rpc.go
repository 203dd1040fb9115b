package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/services"
)

// ServiceName is the name GameService is registered under.
const ServiceName = "GameService"

// Submitter queues actions on the hub.
type Submitter interface {
	SubmitAction(ctx context.Context, action protocol.Action, submitter, nonce string) error
}

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer creates a new RPC server with svc registered.
func NewServer(addr string, svc *GameService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(ServiceName, svc); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
		rpc:      srv,
	}, nil
}

// Addr is the bound address, useful when listening on ":0".
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService is the struct that exposes RPC methods. Methods follow the
// net/rpc signature: exported arguments, pointer reply, error result.
type GameService struct {
	queries   *services.QueryService
	submitter Submitter
}

// NewGameService creates a new GameService. submitter may be nil, which
// makes Submit fail.
func NewGameService(q *services.QueryService, submitter Submitter) *GameService {
	return &GameService{queries: q, submitter: submitter}
}

// Empty is the argument of calls that take none. gob needs an exported field.
type Empty struct {
	Caller string
}

type AddressArgs struct {
	Address string
}

type IDArgs struct {
	ID string
}

type LeaderboardArgs struct {
	Game  models.GameType
	Limit int
}

type RoomsReply struct {
	Rooms []*models.GameRoom
}

type TournamentsReply struct {
	Tournaments []*models.Tournament
}

type SocialReply struct {
	Friends  []models.FriendEntry
	Requests []models.FriendRequest
}

type ChallengesReply struct {
	Challenges []models.Challenge
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

type ShardReply struct {
	Shard string
}

// SubmitArgs carries one action as its kind and JSON body.
type SubmitArgs struct {
	Kind      protocol.ActionKind
	Body      []byte
	Submitter string
	Nonce     string
}

type SubmitReply struct {
	Queued bool
}

var ErrNoSubmitter = errors.New("action submission is not enabled")

func (gs *GameService) GetGlobalStats(_ *Empty, reply *models.GlobalStats) error {
	*reply = gs.queries.GlobalStats()
	return nil
}

func (gs *GameService) GetProfile(args *AddressArgs, reply *models.PlayerProfile) error {
	p, err := gs.queries.Profile(args.Address)
	if err != nil {
		return err
	}
	*reply = *p
	return nil
}

func (gs *GameService) GetActiveRooms(_ *Empty, reply *RoomsReply) error {
	reply.Rooms = gs.queries.ActiveRooms()
	return nil
}

func (gs *GameService) GetRoom(args *IDArgs, reply *models.GameRoom) error {
	r, err := gs.queries.Room(args.ID)
	if err != nil {
		return err
	}
	*reply = *r
	return nil
}

func (gs *GameService) GetShard(args *IDArgs, reply *ShardReply) error {
	shard, err := gs.queries.ShardFor(args.ID)
	if err != nil {
		return err
	}
	reply.Shard = shard
	return nil
}

func (gs *GameService) GetActiveTournaments(_ *Empty, reply *TournamentsReply) error {
	reply.Tournaments = gs.queries.ActiveTournaments()
	return nil
}

func (gs *GameService) GetTournament(args *IDArgs, reply *models.Tournament) error {
	t, err := gs.queries.Tournament(args.ID)
	if err != nil {
		return err
	}
	*reply = *t
	return nil
}

func (gs *GameService) GetSocial(args *AddressArgs, reply *SocialReply) error {
	reply.Friends = gs.queries.Friends(args.Address)
	reply.Requests = gs.queries.FriendRequests(args.Address)
	return nil
}

func (gs *GameService) GetChallenges(args *AddressArgs, reply *ChallengesReply) error {
	reply.Challenges = gs.queries.Challenges(args.Address)
	return nil
}

func (gs *GameService) GetChallenge(args *IDArgs, reply *models.Challenge) error {
	c, err := gs.queries.Challenge(args.ID)
	if err != nil {
		return err
	}
	*reply = *c
	return nil
}

func (gs *GameService) GetLeaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	reply.Entries = gs.queries.Leaderboard(args.Game, args.Limit)
	return nil
}

// Submit queues an action. Queued only means the hub accepted it into its
// mailbox; the outcome is observed through the queries.
func (gs *GameService) Submit(args *SubmitArgs, reply *SubmitReply) error {
	if gs.submitter == nil {
		return ErrNoSubmitter
	}
	action, err := protocol.DecodeAction(args.Kind, args.Body)
	if err != nil {
		return err
	}
	if err := gs.submitter.SubmitAction(context.Background(), action, args.Submitter, args.Nonce); err != nil {
		return err
	}
	reply.Queued = true
	return nil
}

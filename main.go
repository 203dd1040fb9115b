package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wfunc/gamestation/api"
	"github.com/wfunc/gamestation/archive"
	"github.com/wfunc/gamestation/broadcast"
	"github.com/wfunc/gamestation/config"
	"github.com/wfunc/gamestation/host"
	"github.com/wfunc/gamestation/hub"
	"github.com/wfunc/gamestation/leaderboard"
	"github.com/wfunc/gamestation/ledger"
	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/monitor"
	"github.com/wfunc/gamestation/persistence"
	"github.com/wfunc/gamestation/rpc"
	"github.com/wfunc/gamestation/scheduler"
	"github.com/wfunc/gamestation/server"
	"github.com/wfunc/gamestation/services"
	"github.com/wfunc/gamestation/session"
	"github.com/wfunc/gamestation/store"
	"github.com/wfunc/gamestation/transport"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.InitWithLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database (optional)
	db := openDatabase(cfg.Database)
	if db != nil {
		defer db.Close()
	}

	// Redis backs the ledger and the leaderboard mirror when configured
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = ledger.NewRedisClient(cfg.Redis)
		defer rdb.Close()
	}

	st, memLedger := restore(ctx, db, rdb == nil)
	var led ledger.Ledger = memLedger
	if rdb != nil {
		redisLedger := ledger.NewRedisLedger(rdb, cfg.Redis.KeyPrefix)
		if err := redisLedger.Ping(ctx); err != nil {
			logger.Log.Fatalf("Failed to connect to redis: %v", err)
		}
		led = redisLedger
		logger.Log.Info("Redis ledger enabled.")
	}

	mon := monitor.NewMonitor("gamestation")
	sessions := session.NewManager()

	h := hub.New(hub.DefaultAddress, st, led)
	h.SetObserver(mon)
	h.SetBroadcaster(broadcast.NewSessionBroadcaster(sessions))
	h.SetChallengeTTL(cfg.Hub.ChallengeTTL)
	h.SetLeaderboardSize(cfg.Hub.LeaderboardSize)

	rt := host.New(h, cfg.Hub.MailboxSize)
	rt.SetRecorder(mon)
	if a := newArchiver(ctx, cfg.Archive, db); a != nil {
		rt.SetArchiver(a)
	}

	var bus *transport.NATS
	if cfg.NATS.URL != "" {
		bus, err = transport.ConnectNATS(cfg.NATS)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to nats: %v", err)
		}
		if err := bus.ListenAll(rt); err != nil {
			logger.Log.Fatalf("Failed to subscribe: %v", err)
		}
		rt.SetTransport(bus)
		logger.Log.Infof("NATS transport enabled on %s", cfg.NATS.URL)
	}
	rt.Start()

	// Periodic jobs
	sched, err := scheduler.New()
	if err != nil {
		logger.Log.Fatalf("Failed to create scheduler: %v", err)
	}
	if db != nil {
		sched.Every("snapshot", cfg.Hub.SnapshotInterval, func() error {
			return persistence.Checkpoint(context.Background(), db, st, memLedger)
		})
	}
	if rdb != nil {
		mirror := leaderboard.NewRedisMirror(rdb, cfg.Redis.KeyPrefix)
		sched.Every("leaderboard-mirror", cfg.Hub.SnapshotInterval, func() error {
			return publishLeaderboards(context.Background(), st, mirror)
		})
	}
	sched.Every("metrics", 15*time.Second, func() error {
		mon.Refresh(gauges(st))
		return nil
	})
	sched.Start()

	// Query layer
	queries := services.NewQueryService(st)
	if hs, ok := db.(services.HistorySource); ok {
		queries.SetHistory(hs)
	}

	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress, rpc.NewGameService(queries, rt))
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	go rpcServer.Start()

	app := api.New(queries, rt)
	go func() {
		logger.Log.Infof("API listening on %s", cfg.Server.APIAddress)
		if err := app.Listen(cfg.Server.APIAddress); err != nil {
			logger.Log.Errorf("API server error: %v", err)
		}
	}()

	mon.StartServer(cfg.Server.MetricsAddress)

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, rt, sessions)
	gameServer.SetPresence(mon)
	go func() {
		if err := gameServer.Start(); err != nil {
			logger.Log.Errorf("Game server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gameServer.Shutdown(shutdownCtx)
	app.ShutdownWithContext(shutdownCtx)
	rpcServer.Stop()
	sched.Shutdown()

	rt.Quiesce()
	rt.Stop()
	if bus != nil {
		bus.Close()
	}
	if db != nil {
		if err := persistence.Checkpoint(shutdownCtx, db, st, memLedger); err != nil {
			logger.Log.Errorf("Final snapshot failed: %v", err)
		}
	}
	mon.Shutdown(shutdownCtx)
}

func openDatabase(cfg config.DatabaseConfig) persistence.Database {
	if !cfg.Postgres.Enabled() {
		logger.Log.Info("No database configured, state is kept in memory only.")
		return nil
	}
	var (
		db  persistence.Database
		err error
	)
	switch cfg.Driver {
	case "pq":
		db, err = persistence.NewPostgreSQL(cfg.Postgres)
	default:
		db, err = persistence.NewGormPostgreSQL(cfg.Postgres)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Infof("Database connection successful (%s).", cfg.Driver)
	return db
}

// restore loads the last snapshot. The in-memory ledger is seeded with the
// saved fingerprints only when it is the active ledger.
func restore(ctx context.Context, db persistence.Database, seedLedger bool) (*store.Store, *ledger.MemoryLedger) {
	mem := ledger.NewMemoryLedger()
	if db == nil {
		return store.New(), mem
	}
	snap, err := db.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, persistence.ErrRecordNotFound):
		logger.Log.Info("No snapshot found, starting empty.")
		return store.New(), mem
	case err != nil:
		logger.Log.Fatalf("Failed to load snapshot: %v", err)
	}
	if seedLedger {
		mem.Import(snap.Fingerprints)
	}
	st := store.Restore(snap)
	logger.Log.Infow("snapshot restored", "players", len(st.Profiles), "rooms", len(st.Rooms), "fingerprints", mem.Len())
	return st, mem
}

func publishLeaderboards(ctx context.Context, st *store.Store, mirror *leaderboard.RedisMirror) error {
	boards := make(map[string][]models.LeaderboardEntry)
	st.RLock()
	for _, g := range models.AllGameTypes {
		key := g.LeaderboardKey()
		boards[key] = append([]models.LeaderboardEntry(nil), st.Leaderboards[key]...)
	}
	st.RUnlock()

	for key, entries := range boards {
		if err := mirror.Publish(ctx, key, entries); err != nil {
			return err
		}
	}
	return nil
}

func gauges(st *store.Store) monitor.Gauges {
	st.RLock()
	defer st.RUnlock()
	return monitor.Gauges{
		ActiveRooms:       len(st.ActiveRooms),
		ActiveTournaments: len(st.ActiveTournaments),
		TotalPlayers:      st.TotalPlayers,
		TotalGames:        st.TotalGames,
	}
}

// newArchiver fans finished matches out to object storage and the database.
func newArchiver(ctx context.Context, cfg config.ArchiveConfig, db persistence.Database) archive.Archiver {
	var out archive.Multi
	if cfg.Bucket != "" {
		client, err := archive.NewS3Client(ctx, cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to create S3 client: %v", err)
		}
		out = append(out, archive.NewS3Archiver(client, cfg.Bucket))
		logger.Log.Infof("Match archive enabled in bucket %s", cfg.Bucket)
	}
	if db != nil {
		out = append(out, archive.Func(db.SaveGameRecord))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

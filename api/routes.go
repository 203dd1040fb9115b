// Package api serves the read-only queries over HTTP with fiber, plus one
// route that queues client actions on the hub.
package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/protocol"
	"github.com/wfunc/gamestation/services"
)

// Header names set by whatever authenticates players in front of the API.
const (
	HeaderPlayer = "X-Player-Address"
	HeaderNonce  = "X-Action-Nonce"
)

// Submitter queues actions on the hub.
type Submitter interface {
	SubmitAction(ctx context.Context, action protocol.Action, submitter, nonce string) error
}

type Handlers struct {
	queries   *services.QueryService
	submitter Submitter
}

// New builds the fiber app. submitter may be nil, in which case the action
// route answers 503.
func New(q *services.QueryService, submitter Submitter) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gamestation",
		DisableStartupMessage: true,
		Immutable:             true,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + HeaderPlayer + ", " + HeaderNonce,
	}))
	SetupRoutes(app, &Handlers{queries: q, submitter: submitter})
	return app
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/stats", h.GetStats)
	app.Get("/players/:address", h.GetPlayer)
	app.Get("/players/:address/history", h.GetPlayerHistory)

	app.Get("/rooms", h.GetRooms)
	app.Get("/rooms/available/:game", h.GetAvailableRoom)
	app.Get("/rooms/:id", h.GetRoom)
	app.Get("/rooms/:id/shard", h.GetRoomShard)

	app.Get("/tournaments", h.GetTournaments)
	app.Get("/tournaments/:id", h.GetTournament)

	app.Get("/friends/:address", h.GetFriends)
	app.Get("/friend-requests/:address", h.GetFriendRequests)

	app.Get("/challenges/by-address/:address", h.GetChallengesByAddress)
	app.Get("/challenges/:id", h.GetChallenge)

	app.Get("/leaderboards/:game", h.GetLeaderboard)

	// 需要玩家身份
	secured := app.Group("/actions", PlayerContextMiddleware())
	secured.Post("/:kind", h.PostAction)
}

// PlayerContextMiddleware requires the player header and stores the address
// in the request locals. The address outlives the request in the hub mailbox,
// so it is copied out of the fasthttp buffer.
func PlayerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := utils.CopyString(strings.TrimSpace(c.Get(HeaderPlayer)))
		if address == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing " + HeaderPlayer,
			})
		}
		c.Locals("player", address)
		return c.Next()
	}
}

func queryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNoHistory):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	}
	logger.Log.Errorw("query failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (h *Handlers) GetStats(c *fiber.Ctx) error {
	return c.JSON(h.queries.GlobalStats())
}

func (h *Handlers) GetPlayer(c *fiber.Ctx) error {
	p, err := h.queries.Profile(c.Params("address"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(p)
}

func (h *Handlers) GetPlayerHistory(c *fiber.Ctx) error {
	stats, err := h.queries.PlayerHistory(c.UserContext(), c.Params("address"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handlers) GetRooms(c *fiber.Ctx) error {
	return c.JSON(h.queries.ActiveRooms())
}

func (h *Handlers) GetAvailableRoom(c *fiber.Ctx) error {
	game, ok := models.ParseGameType(c.Params("game"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown game"})
	}
	r, err := h.queries.AvailableRoom(game)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(r)
}

func (h *Handlers) GetRoom(c *fiber.Ctx) error {
	r, err := h.queries.Room(c.Params("id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(r)
}

func (h *Handlers) GetRoomShard(c *fiber.Ctx) error {
	shard, err := h.queries.ShardFor(c.Params("id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(fiber.Map{"room_id": c.Params("id"), "shard": shard})
}

func (h *Handlers) GetTournaments(c *fiber.Ctx) error {
	return c.JSON(h.queries.ActiveTournaments())
}

func (h *Handlers) GetTournament(c *fiber.Ctx) error {
	t, err := h.queries.Tournament(c.Params("id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(t)
}

func (h *Handlers) GetFriends(c *fiber.Ctx) error {
	return c.JSON(h.queries.Friends(c.Params("address")))
}

func (h *Handlers) GetFriendRequests(c *fiber.Ctx) error {
	return c.JSON(h.queries.FriendRequests(c.Params("address")))
}

func (h *Handlers) GetChallengesByAddress(c *fiber.Ctx) error {
	return c.JSON(h.queries.Challenges(c.Params("address")))
}

func (h *Handlers) GetChallenge(c *fiber.Ctx) error {
	ch, err := h.queries.Challenge(c.Params("id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(ch)
}

// GetLeaderboard accepts ?limit=; a missing or non-positive limit falls back
// to the default.
func (h *Handlers) GetLeaderboard(c *fiber.Ctx) error {
	game, ok := models.ParseGameType(c.Params("game"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown game"})
	}
	return c.JSON(h.queries.Leaderboard(game, c.QueryInt("limit", 0)))
}

// PostAction queues the action named by :kind with the JSON body. 202 only
// means the hub accepted it into its mailbox.
func (h *Handlers) PostAction(c *fiber.Ctx) error {
	if h.submitter == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "actions disabled"})
	}
	kind := protocol.ActionKind(c.Params("kind"))
	action, err := protocol.DecodeAction(kind, c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	player, _ := c.Locals("player").(string)
	nonce := utils.CopyString(c.Get(HeaderNonce))
	if err := h.submitter.SubmitAction(c.UserContext(), action, player, nonce); err != nil {
		logger.Log.Warnw("action not queued", "kind", kind, "player", player, "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true, "kind": kind})
}

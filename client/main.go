package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/gamestation/models"
	"github.com/wfunc/gamestation/network"
	"github.com/wfunc/gamestation/protocol"
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// withNonce adds a fresh nonce to the action body so a resend is deduplicated.
func withNonce(a protocol.Action) (map[string]interface{}, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	body["nonce"] = uuid.NewString()
	return body, nil
}

// parse turns one input line into an action.
func parse(line string) (protocol.Action, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	switch fields[0] {
	case "create":
		n, _ := strconv.Atoi(arg(2))
		return protocol.CreateRoom{Game: gameType(arg(1)), MaxPlayers: n}, true
	case "join":
		return protocol.JoinRoom{RoomID: arg(1)}, true
	case "leave":
		return protocol.LeaveRoom{RoomID: arg(1)}, true
	case "move":
		return protocol.MakeMove{RoomID: arg(1), Move: arg(2)}, true
	case "close":
		return protocol.CloseRoom{RoomID: arg(1)}, true
	case "name":
		return protocol.UpdateProfile{Username: arg(1)}, true
	case "friend":
		return protocol.SendFriendRequest{To: arg(1)}, true
	case "accept":
		return protocol.AcceptFriendRequest{From: arg(1)}, true
	case "challenge":
		return protocol.CreateChallenge{Opponent: arg(1), Game: gameType(arg(2))}, true
	}
	return nil, false
}

func main() {
	addr := flag.String("addr", "localhost:8080", "game server address")
	player := flag.String("player", "", "player address")
	flag.Parse()
	if *player == "" {
		*player = "player-" + uuid.NewString()[:8]
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s as %s", u.String(), *player)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			p, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			log.Printf("<- RECV (ID: %d): %s", p.MsgID, string(p.Data))
		}
	}()

	if err := send(c, network.MsgTypeHello, network.Hello{Address: *player}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: create <game> [players] | join <room> | move <room> <x,y> | leave <room> | close <room> | name <username> | friend <address> | accept <address> | challenge <address> <game>")

	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
		close(lines)
	}()

	// Write loop
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			action, ok := parse(line)
			if !ok {
				log.Printf("Unknown command %q", line)
				continue
			}
			msgID, _ := network.MsgID(action.Kind())
			body, err := withNonce(action)
			if err != nil {
				log.Println("Encode error:", err)
				continue
			}
			if err := send(c, msgID, body); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", action.Kind())
		}
	}
}

func gameType(s string) models.GameType {
	if g, ok := models.ParseGameType(s); ok {
		return g
	}
	return models.GameType(s)
}

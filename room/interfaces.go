package room

// Broadcaster pushes a packet to a set of players.
type Broadcaster interface {
	BroadcastToUsers(addresses []string, msgID uint16, data []byte) error
}

package rules

import (
	"strconv"
	"strings"
)

const FinalSquare = 100

// Shortcuts maps a landing square to its destination. Ladders climb, snakes drop.
var Shortcuts = map[int]int{
	// snakes
	16: 6, 47: 26, 49: 11, 56: 53, 62: 19, 64: 60, 87: 24, 93: 73, 95: 75, 98: 78,
	// ladders
	1: 38, 4: 14, 9: 31, 21: 42, 28: 84, 36: 44, 51: 67, 71: 91, 80: 100,
}

// Positions is the typed track state. Order keeps the encoding stable.
type Positions struct {
	order []string
	pos   map[string]int
}

// ParseTrack decodes "player:square" pairs joined by commas. Entries that do
// not parse are skipped.
func ParseTrack(s string) Positions {
	p := Positions{pos: make(map[string]int)}
	if s == "" {
		return p
	}
	for _, entry := range strings.Split(s, ",") {
		i := strings.LastIndex(entry, ":")
		if i <= 0 {
			continue
		}
		sq, err := strconv.Atoi(entry[i+1:])
		if err != nil || sq < 0 {
			continue
		}
		p.Set(entry[:i], sq)
	}
	return p
}

func (p Positions) Get(player string) (int, bool) {
	sq, ok := p.pos[player]
	return sq, ok
}

func (p *Positions) Set(player string, square int) {
	if p.pos == nil {
		p.pos = make(map[string]int)
	}
	if _, ok := p.pos[player]; !ok {
		p.order = append(p.order, player)
	}
	p.pos[player] = square
}

func (p Positions) String() string {
	parts := make([]string, 0, len(p.order))
	for _, player := range p.order {
		parts = append(parts, player+":"+strconv.Itoa(p.pos[player]))
	}
	return strings.Join(parts, ",")
}

// Advance moves from square by die and resolves the shortcut table. A result
// beyond the final square keeps the player where they were.
func Advance(square, die int) int {
	next := square + die
	if dest, ok := Shortcuts[next]; ok {
		next = dest
	}
	if next > FinalSquare {
		return square
	}
	return next
}

// Track is the snakes and ladders race. A move is a die value from 1 to 6.
type Track struct{}

func (Track) ApplyMove(state, move, player string, _ []string) string {
	die, err := strconv.Atoi(strings.TrimSpace(move))
	if err != nil || die < 1 || die > 6 {
		return state
	}
	p := ParseTrack(state)
	cur, _ := p.Get(player)
	p.Set(player, Advance(cur, die))
	return p.String()
}

func (Track) CheckWin(state, player string) bool {
	sq, ok := ParseTrack(state).Get(player)
	return ok && sq >= FinalSquare
}

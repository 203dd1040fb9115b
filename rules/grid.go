package rules

import (
	"errors"
	"strconv"
	"strings"
)

const (
	Empty byte = '-'
	MarkX byte = 'X'
	MarkO byte = 'O'
)

var (
	ErrBadBoard = errors.New("rules: malformed board")
	ErrBadCell  = errors.New("rules: malformed cell")
)

// Board is a 3x3 grid indexed [y][x].
type Board [3][3]byte

func EmptyBoard() Board {
	var b Board
	for y := range b {
		for x := range b[y] {
			b[y][x] = Empty
		}
	}
	return b
}

// ParseBoard decodes three newline separated rows. The empty string is the
// empty board.
func ParseBoard(s string) (Board, error) {
	if s == "" {
		return EmptyBoard(), nil
	}
	rows := strings.Split(s, "\n")
	if len(rows) != 3 {
		return Board{}, ErrBadBoard
	}
	var b Board
	for y, row := range rows {
		if len(row) != 3 {
			return Board{}, ErrBadBoard
		}
		for x := 0; x < 3; x++ {
			c := row[x]
			if c != Empty && c != MarkX && c != MarkO {
				return Board{}, ErrBadBoard
			}
			b[y][x] = c
		}
	}
	return b, nil
}

func (b Board) String() string {
	rows := make([]string, 3)
	for y := range b {
		rows[y] = string(b[y][:])
	}
	return strings.Join(rows, "\n")
}

// Place puts mark at (x, y) if the cell is free.
func (b *Board) Place(x, y int, mark byte) bool {
	if x < 0 || x > 2 || y < 0 || y > 2 {
		return false
	}
	if b[y][x] != Empty {
		return false
	}
	b[y][x] = mark
	return true
}

var lines = [8][3][2]int{
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{2, 0}, {1, 1}, {0, 2}},
}

// Winner returns the mark owning a complete line, or 0.
func (b Board) Winner() byte {
	for _, l := range lines {
		a := b[l[0][1]][l[0][0]]
		if a == Empty {
			continue
		}
		if a == b[l[1][1]][l[1][0]] && a == b[l[2][1]][l[2][0]] {
			return a
		}
	}
	return 0
}

// ParseCell decodes a zero based "x,y" move.
func ParseCell(move string) (x, y int, err error) {
	parts := strings.Split(move, ",")
	if len(parts) != 2 {
		return 0, 0, ErrBadCell
	}
	if x, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, ErrBadCell
	}
	if y, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, ErrBadCell
	}
	return x, y, nil
}

// Grid is the 3x3 line game. The first listed player marks X, everyone else O.
type Grid struct{}

func (Grid) ApplyMove(state, move, player string, players []string) string {
	x, y, err := ParseCell(move)
	if err != nil {
		return state
	}
	b, err := ParseBoard(state)
	if err != nil {
		return state
	}
	mark := MarkO
	if len(players) > 0 && players[0] == player {
		mark = MarkX
	}
	if !b.Place(x, y, mark) {
		return state
	}
	return b.String()
}

// CheckWin reports any complete line. The mover that completed it is the winner.
func (Grid) CheckWin(state, _ string) bool {
	if state == "" {
		return false
	}
	b, err := ParseBoard(state)
	if err != nil {
		return false
	}
	return b.Winner() != 0
}

package player

import "errors"

var (
	// ErrEmptyPool is returned when a source yields no players
	ErrEmptyPool = errors.New("player pool is empty")
	// ErrDuplicateName is returned when two pool entries share a name
	ErrDuplicateName = errors.New("duplicate player name")
	// ErrInvalidPlayer is returned for entries without a name, position or positive base price
	ErrInvalidPlayer = errors.New("invalid player entry")
)

package player

import (
	"fmt"
	"strings"

	"github.com/mcdev12/auctionhouse/go/internal/models"
)

// Pool is the immutable set of biddable players, loaded once at startup.
type Pool struct {
	players    []models.PoolPlayer
	byPosition map[string][]models.PoolPlayer
	positions  []string
}

// DefaultPlayers is the built-in sample used when no pool source is available.
func DefaultPlayers() []models.PoolPlayer {
	return []models.PoolPlayer{
		{Name: "Luka Modric", Position: "CM", BasePrice: 50},
		{Name: "Cristiano Ronaldo", Position: "CF", BasePrice: 70},
		{Name: "Manuel Neuer", Position: "GK", BasePrice: 40},
		{Name: "Virgil van Dijk", Position: "CB", BasePrice: 55},
		{Name: "Mohamed Salah", Position: "RW", BasePrice: 60},
		{Name: "Kylian Mbappé", Position: "CF", BasePrice: 80},
	}
}

// NewPool validates the entries and builds the position index.
// Entry order is preserved; positions are listed in first-seen order.
func NewPool(players []models.PoolPlayer) (*Pool, error) {
	if len(players) == 0 {
		return nil, ErrEmptyPool
	}

	p := &Pool{
		players:    make([]models.PoolPlayer, 0, len(players)),
		byPosition: make(map[string][]models.PoolPlayer),
	}
	seen := make(map[string]struct{}, len(players))

	for i, pl := range players {
		pl.Name = strings.TrimSpace(pl.Name)
		pl.Position = strings.TrimSpace(pl.Position)
		if pl.Name == "" || pl.Position == "" || pl.BasePrice <= 0 {
			return nil, fmt.Errorf("entry %d (%q): %w", i, pl.Name, ErrInvalidPlayer)
		}
		if _, dup := seen[pl.Name]; dup {
			return nil, fmt.Errorf("%q: %w", pl.Name, ErrDuplicateName)
		}
		seen[pl.Name] = struct{}{}

		if _, ok := p.byPosition[pl.Position]; !ok {
			p.positions = append(p.positions, pl.Position)
		}
		p.byPosition[pl.Position] = append(p.byPosition[pl.Position], pl)
		p.players = append(p.players, pl)
	}

	return p, nil
}

// MustDefaultPool returns a pool built from DefaultPlayers.
func MustDefaultPool() *Pool {
	p, err := NewPool(DefaultPlayers())
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of players in the pool.
func (p *Pool) Len() int { return len(p.players) }

// Players returns a copy of every entry in load order.
func (p *Pool) Players() []models.PoolPlayer {
	out := make([]models.PoolPlayer, len(p.players))
	copy(out, p.players)
	return out
}

// Positions returns the distinct position categories.
func (p *Pool) Positions() []string {
	out := make([]string, len(p.positions))
	copy(out, p.positions)
	return out
}

// Available returns the players of a position whose names are not in sold.
func (p *Pool) Available(position string, sold map[string]struct{}) []models.PoolPlayer {
	var out []models.PoolPlayer
	for _, pl := range p.byPosition[position] {
		if _, taken := sold[pl.Name]; taken {
			continue
		}
		out = append(out, pl)
	}
	return out
}

// Exhausted reports whether every player in the pool is in sold.
func (p *Pool) Exhausted(sold map[string]struct{}) bool {
	for _, pl := range p.players {
		if _, taken := sold[pl.Name]; !taken {
			return false
		}
	}
	return true
}

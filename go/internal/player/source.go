package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a pool from a JSON or YAML file. A missing file falls back to
// the built-in sample set instead of failing startup.
func LoadFile(path string) (*Pool, error) {
	if path == "" {
		log.Warn().Msg("no player pool path configured, using built-in sample")
		return MustDefaultPool(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("player pool file not found, using built-in sample")
			return MustDefaultPool(), nil
		}
		return nil, fmt.Errorf("failed to read player pool: %w", err)
	}

	players, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse player pool %s: %w", path, err)
	}

	pool, err := NewPool(players)
	if err != nil {
		return nil, fmt.Errorf("invalid player pool %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("players", pool.Len()).
		Int("positions", len(pool.positions)).
		Msg("loaded player pool")
	return pool, nil
}

func decode(path string, data []byte) ([]models.PoolPlayer, error) {
	var players []models.PoolPlayer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &players); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &players); err != nil {
			return nil, err
		}
	}
	return players, nil
}

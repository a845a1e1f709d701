package player

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_IndexesPositionsInOrder(t *testing.T) {
	pool, err := NewPool(DefaultPlayers())
	require.NoError(t, err)

	assert.Equal(t, 6, pool.Len())
	assert.Equal(t, []string{"CM", "CF", "GK", "CB", "RW"}, pool.Positions())
}

func TestNewPool_RejectsBadEntries(t *testing.T) {
	cases := []struct {
		name    string
		players []models.PoolPlayer
		wantErr error
	}{
		{name: "empty", players: nil, wantErr: ErrEmptyPool},
		{
			name: "duplicate",
			players: []models.PoolPlayer{
				{Name: "A", Position: "GK", BasePrice: 10},
				{Name: "A", Position: "CB", BasePrice: 10},
			},
			wantErr: ErrDuplicateName,
		},
		{
			name:    "zero price",
			players: []models.PoolPlayer{{Name: "A", Position: "GK", BasePrice: 0}},
			wantErr: ErrInvalidPlayer,
		},
		{
			name:    "missing position",
			players: []models.PoolPlayer{{Name: "A", BasePrice: 5}},
			wantErr: ErrInvalidPlayer,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPool(tc.players)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAvailable_FiltersSold(t *testing.T) {
	pool := MustDefaultPool()
	sold := map[string]struct{}{"Kylian Mbappé": {}}

	got := pool.Available("CF", sold)
	require.Len(t, got, 1)
	assert.Equal(t, "Cristiano Ronaldo", got[0].Name)

	sold["Cristiano Ronaldo"] = struct{}{}
	assert.Empty(t, pool.Available("CF", sold))
	assert.False(t, pool.Exhausted(sold))
}

func TestExhausted(t *testing.T) {
	pool := MustDefaultPool()
	sold := map[string]struct{}{}
	for _, p := range pool.Players() {
		sold[p.Name] = struct{}{}
	}
	assert.True(t, pool.Exhausted(sold))
}

func TestLoadFile_MissingFallsBackToSample(t *testing.T) {
	pool, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPlayers()), pool.Len())
}

func TestLoadFile_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "players.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
		{"name": "Pedri", "position": "CM", "basePrice": 45},
		{"name": "Alisson", "position": "GK", "basePrice": 35}
	]`), 0o600))

	pool, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, []string{"CM", "GK"}, pool.Positions())

	yamlPath := filepath.Join(dir, "players.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- name: Rodri
  position: CDM
  basePrice: 65
`), 0o600))

	pool, err = LoadFile(yamlPath)
	require.NoError(t, err)
	require.Equal(t, 1, pool.Len())
	assert.Equal(t, 65, pool.Players()[0].BasePrice)
}

func TestLoadFile_MalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

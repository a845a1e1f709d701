package auction

import (
	"sort"
	"sync"
)

// Registry owns the mapping from room id to Room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// insert registers a fully built room, failing if the id is taken or the
// capacity is out of bounds.
func (g *Registry) insert(r *Room) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.rooms[r.id]; exists {
		return ErrRoomExists
	}
	if r.capacity < MinCapacity || r.capacity > MaxCapacity {
		return ErrInvalidCapacity
	}
	g.rooms[r.id] = r
	return nil
}

// Get looks a room up by id.
func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// remove deletes id only while it still maps to r.
func (g *Registry) remove(id string, r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.rooms[id]; ok && cur == r {
		delete(g.rooms, id)
	}
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// IDs returns the live room ids in sorted order.
func (g *Registry) IDs() []string {
	g.mu.RLock()
	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	g.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (g *Registry) all() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

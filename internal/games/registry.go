// Package games holds the game descriptors this server can host. Descriptors
// are plain flow.Game values registered at init; the session layer looks them
// up by name when a match is created.
package games

import (
	"sort"
	"sync"

	"github.com/lqviet/boardflow/internal/flow"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]*flow.Game)
)

// Register normalizes g and adds it to the registry, replacing any previous
// descriptor with the same name.
func Register(g *flow.Game) {
	g = flow.New(g)
	mu.Lock()
	defer mu.Unlock()
	registry[g.Name] = g
}

// Lookup returns the registered descriptor for name.
func Lookup(name string) (*flow.Game, bool) {
	mu.RLock()
	defer mu.RUnlock()
	g, ok := registry[name]
	return g, ok
}

// Names returns the registered game names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(TicTacToe())
	Register(CardDraft())
}

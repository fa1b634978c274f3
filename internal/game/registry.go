package game

import (
	"fmt"
	"sync"
)

// Registry keeps the games exposed by the bot in registration order,
// which is the order /help lists them in.
type Registry struct {
	games map[string]Game
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]Game),
	}
}

// Register adds a game to the registry.
// Registering a command twice replaces the game but keeps its position.
func (r *Registry) Register(g Game) error {
	if g == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if g.Command() == "" {
		return fmt.Errorf("game command cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[g.Command()]; !exists {
		r.order = append(r.order, g.Command())
	}
	r.games[g.Command()] = g
	return nil
}

// MustRegister registers every game and panics on error.
func (r *Registry) MustRegister(games ...Game) {
	for _, g := range games {
		if err := r.Register(g); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a game by its command.
func (r *Registry) Get(command string) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[command]
	return g, ok
}

// List returns all registered games in registration order.
func (r *Registry) List() []Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]Game, 0, len(r.order))
	for _, cmd := range r.order {
		games = append(games, r.games[cmd])
	}
	return games
}

// Commands returns all registered game commands in registration order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, len(r.order))
	copy(commands, r.order)
	return commands
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

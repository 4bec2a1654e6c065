package actor

import (
	"sort"
	"sync"
)

// Registry хранит актёров, находящихся в мире
type Registry struct {
	mu     sync.RWMutex
	actors map[string]Actor
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{actors: make(map[string]Actor)}
}

// Add регистрирует актёра (повторная регистрация заменяет прежнего)
func (r *Registry) Add(a Actor) {
	r.mu.Lock()
	r.actors[a.ID()] = a
	r.mu.Unlock()
}

// Remove удаляет актёра
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.actors, id)
	r.mu.Unlock()
}

// Get возвращает актёра по ID
func (r *Registry) Get(id string) (Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[id]
	return a, ok
}

// All возвращает всех актёров, отсортированных по ID
func (r *Registry) All() []Actor {
	r.mu.RLock()
	out := make([]Actor, 0, len(r.actors))
	for _, a := range r.actors {
		out = append(out, a)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

package pipeline

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/gateway"
	"github.com/dejargonator/dejargonator/internal/mirror"
)

// Registry hands out one Manager per user session, constructed on first use.
// It replaces the module-level board of earlier dashboard iterations so each
// session (and each test) gets its own isolated instance.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Manager

	gateway  gateway.AnalysisGateway
	mirror   mirror.Mirror
	renderer Renderer
	logger   *zap.Logger
}

func NewRegistry(gw gateway.AnalysisGateway, mi mirror.Mirror, r Renderer, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Manager),
		gateway:  gw,
		mirror:   mi,
		renderer: r,
		logger:   logger,
	}
}

// GetOrCreate returns userID's session manager, creating it if this is the
// first operation of the session.
func (r *Registry) GetOrCreate(userID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.sessions[userID]; ok {
		return m
	}
	m := NewManager(userID, r.gateway, r.mirror, r.renderer, r.logger)
	r.sessions[userID] = m
	return m
}

// Drop discards userID's session manager, e.g. on sign-out.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

package cart

import "sync"

// submitGate tracks which carts have a checkout in flight. At most one
// holder per user at a time.
type submitGate struct {
	mu      sync.Mutex
	holders map[string]struct{}
}

func (g *submitGate) acquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holders == nil {
		g.holders = make(map[string]struct{})
	}
	if _, taken := g.holders[userID]; taken {
		return false
	}
	g.holders[userID] = struct{}{}
	return true
}

func (g *submitGate) release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.holders, userID)
}

func (g *submitGate) held(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.holders[userID]
	return taken
}

package draft

import "sync"

// submitLocks candado no bloqueante por borrador dentro del proceso. El estado Submitting
// persistido cubre las demás instancias.
type submitLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newSubmitLocks() *submitLocks {
	return &submitLocks{held: make(map[string]struct{})}
}

// tryAcquire devuelve false si ya hay un envío en curso para id.
func (l *submitLocks) tryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[id]; ok {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *submitLocks) release(id string) {
	l.mu.Lock()
	delete(l.held, id)
	l.mu.Unlock()
}

package session

import (
	"sort"
	"sync"

	"github.com/talentops/pulsemark/internal/appraisal"
	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// Manager is the registry of live appraisal sessions, one per employee
// reference. Sessions are created lazily on first write.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	engine     *appraisal.Engine
	classifier *appraisal.Classifier
}

// NewManager creates an empty registry backed by the given engine and
// classifier. Every session shares them; they are read-only after start.
func NewManager(engine *appraisal.Engine, classifier *appraisal.Classifier) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		engine:     engine,
		classifier: classifier,
	}
}

// GetOrCreate returns the employee's session, creating it if absent.
func (m *Manager) GetOrCreate(employeeRef string) (*Session, error) {
	if employeeRef == "" {
		return nil, apperrors.NewValidationError("employee reference is required")
	}

	m.mu.RLock()
	s, ok := m.sessions[employeeRef]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[employeeRef]; ok {
		return s, nil
	}
	s = New(employeeRef, m.engine, m.classifier)
	m.sessions[employeeRef] = s
	return s, nil
}

// Get returns the employee's session or a NotFoundError.
func (m *Manager) Get(employeeRef string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[employeeRef]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("session", employeeRef)
	}
	return s, nil
}

// Delete removes the employee's session. Deleting an absent session is
// not an error.
func (m *Manager) Delete(employeeRef string) {
	m.mu.Lock()
	delete(m.sessions, employeeRef)
	m.mu.Unlock()
}

// List returns the registered employee references in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	refs := make([]string, 0, len(m.sessions))
	for ref := range m.sessions {
		refs = append(refs, ref)
	}
	m.mu.RUnlock()
	sort.Strings(refs)
	return refs
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

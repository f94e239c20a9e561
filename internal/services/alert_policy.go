package services

import (
	"sync"

	"github.com/critmon/pulsecheck/internal/models"
)

// AlertPolicy decides whether an observed expiry should produce a
// notification. The core data model does not persist an alert-sent flag, so
// implementations carry their own dedup state.
type AlertPolicy interface {
	// ShouldAlert reports whether to notify for this monitor and records
	// the decision, so a given outage alerts at most once per policy.
	ShouldAlert(m *models.Monitor) bool
	// Reconcile is called after each sweep with the ids still expired;
	// state for any other monitor is released so a later outage alerts
	// again.
	Reconcile(expiredIDs []string)
}

// OncePerOutage alerts once per expiry transition and rearms as soon as the
// monitor is no longer observed expired.
type OncePerOutage struct {
	mu      sync.Mutex
	alerted map[string]struct{}
}

// NewOncePerOutage creates the default alert policy.
func NewOncePerOutage() *OncePerOutage {
	return &OncePerOutage{alerted: make(map[string]struct{})}
}

func (p *OncePerOutage) ShouldAlert(m *models.Monitor) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.alerted[m.ID]; ok {
		return false
	}
	p.alerted[m.ID] = struct{}{}
	return true
}

func (p *OncePerOutage) Reconcile(expiredIDs []string) {
	still := make(map[string]struct{}, len(expiredIDs))
	for _, id := range expiredIDs {
		still[id] = struct{}{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.alerted {
		if _, ok := still[id]; !ok {
			delete(p.alerted, id)
		}
	}
}

package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Availability is the typed result of a capability probe. Reason is only
// meaningful when Available is false; it becomes the skip message of every
// case that depended on the capability.
type Availability struct {
	Available bool
	Reason    string
}

func Up() Availability {
	return Availability{Available: true}
}

func Down(reason string) Availability {
	return Availability{Available: false, Reason: reason}
}

func Downf(format string, args ...interface{}) Availability {
	return Down(fmt.Sprintf(format, args...))
}

// Probe checks an external collaborator once, before a sweep is enqueued.
// Probes must not mutate the collaborator.
type Probe func(context.Context) Availability

// AvailabilitySnapshot is a read-mostly cache of the last probe results,
// keyed by collaborator name. The backend watcher refreshes it periodically;
// sweeps read it when constructing cases.
type AvailabilitySnapshot struct {
	mu      sync.RWMutex
	entries map[string]Availability
}

func NewAvailabilitySnapshot() *AvailabilitySnapshot {
	return &AvailabilitySnapshot{
		entries: make(map[string]Availability),
	}
}

func (s *AvailabilitySnapshot) Set(name string, av Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = av
	zap.L().Debug(fmt.Sprintf("availability of %s is now %t/reason:%s", name, av.Available, av.Reason))
}

// Get returns the cached availability. A collaborator that was never probed
// counts as unavailable.
func (s *AvailabilitySnapshot) Get(name string) Availability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	av, ok := s.entries[name]
	if !ok {
		return Down(fmt.Sprintf("%s has not been probed", name))
	}
	return av
}

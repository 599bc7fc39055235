package catalog

import (
	"context"
	"sort"
	"sync"

	id "talentgate/pkg/domain"
)

// Static serves catalog data from memory. It backs tests and deployments
// where reference data is seeded at startup.
type Static struct {
	mu      sync.RWMutex
	domains map[id.DomainID][]Round
}

func NewStatic() *Static {
	return &Static{domains: make(map[id.DomainID][]Round)}
}

// SetDomain replaces the round sequence for a domain. Rounds are kept sorted
// by sequence number so reads never re-sort.
func (s *Static) SetDomain(domainID id.DomainID, rounds []Round) {
	sorted := append([]Round{}, rounds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[domainID] = sorted
}

func (s *Static) OrderedRounds(_ context.Context, domainID id.DomainID) ([]Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Round{}, s.domains[domainID]...), nil
}

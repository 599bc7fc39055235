package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	id "talentgate/pkg/domain"
)

type fileDomain struct {
	DomainID string `json:"domain_id"`
	Rounds   []struct {
		RoundID  string `json:"round_id"`
		Name     string `json:"name"`
		Sequence int    `json:"sequence"`
	} `json:"rounds"`
}

// LoadFile reads a catalog snapshot from a JSON file. The catalog itself is
// owned by an external system; the snapshot is the read-only view this
// service works against.
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var domains []fileDomain
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	static := NewStatic()
	for _, domain := range domains {
		domainID, err := id.ParseDomainID(domain.DomainID)
		if err != nil {
			return nil, fmt.Errorf("catalog domain %q: %w", domain.DomainID, err)
		}
		rounds := make([]Round, 0, len(domain.Rounds))
		for _, round := range domain.Rounds {
			roundID, err := id.ParseRoundID(round.RoundID)
			if err != nil {
				return nil, fmt.Errorf("catalog round %q: %w", round.RoundID, err)
			}
			rounds = append(rounds, Round{ID: roundID, Name: round.Name, Sequence: round.Sequence})
		}
		static.SetDomain(domainID, rounds)
	}
	return static, nil
}

// Package catalog exposes the Domain Catalog collaborator: the ordered round
// sequence for each work domain. The catalog is reference data owned by an
// external system; the core only reads it.
package catalog

import (
	"context"

	id "talentgate/pkg/domain"
)

// Round is one entry in a domain's ordered round sequence.
type Round struct {
	ID       id.RoundID `json:"id"`
	Name     string     `json:"name"`
	Sequence int        `json:"sequence"`
}

// Catalog resolves a domain's ordered rounds. Implementations must return
// rounds sorted by Sequence ascending.
type Catalog interface {
	OrderedRounds(ctx context.Context, domainID id.DomainID) ([]Round, error)
}

// TotalRounds is a convenience for callers that only need the count.
// An unknown domain yields zero, not an error: the progress tracker treats a
// domain without catalog data as open-ended.
func TotalRounds(ctx context.Context, c Catalog, domainID id.DomainID) (int, error) {
	rounds, err := c.OrderedRounds(ctx, domainID)
	if err != nil {
		return 0, err
	}
	return len(rounds), nil
}

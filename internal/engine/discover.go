package engine

import (
	"context"
	"time"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/store"
)

// Provenance records how a table descriptor was obtained. Callers rely on it
// to tell "no tables because introspection is unavailable" apart from "the
// database is empty", so it is load-bearing, not cosmetic.
type Provenance string

const (
	ProvenanceIntrospected Provenance = "introspected"
	ProvenanceHeuristic    Provenance = "heuristic"
)

// TableDescriptor identifies a discovered table and how it was discovered
type TableDescriptor struct {
	Name         string     `json:"name"`
	Provenance   Provenance `json:"provenance"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// Discoverer enumerates tables via store metadata, degrading silently to a
// configured suggestion list when the store cannot serve introspection.
type Discoverer struct {
	store       store.Store
	suggestions []string
	logger      *logging.Logger
}

// NewDiscoverer creates a discoverer with a heuristic fallback list
func NewDiscoverer(st store.Store, suggestions []string, logger *logging.Logger) *Discoverer {
	return &Discoverer{
		store:       st,
		suggestions: suggestions,
		logger:      logger,
	}
}

// ListTables attempts one metadata query. Introspected names are returned as
// Introspected descriptors. A discovery_unavailable failure is soft: the
// configured suggestion list comes back tagged Heuristic and no error is
// raised. Transport and timeout failures still propagate.
func (d *Discoverer) ListTables(ctx context.Context) ([]TableDescriptor, error) {
	now := time.Now()

	names, err := d.store.TableNames(ctx)
	if err != nil {
		if !errors.IsType(err, errors.ErrTypeDiscoveryUnavailable) {
			return nil, err
		}

		d.logger.WithError(err).Debug("table introspection unavailable, using heuristic suggestions")

		descriptors := make([]TableDescriptor, 0, len(d.suggestions))
		for _, name := range d.suggestions {
			descriptors = append(descriptors, TableDescriptor{
				Name:         name,
				Provenance:   ProvenanceHeuristic,
				DiscoveredAt: now,
			})
		}

		return descriptors, nil
	}

	descriptors := make([]TableDescriptor, 0, len(names))
	for _, name := range names {
		descriptors = append(descriptors, TableDescriptor{
			Name:         name,
			Provenance:   ProvenanceIntrospected,
			DiscoveredAt: now,
		})
	}

	return descriptors, nil
}

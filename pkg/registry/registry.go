// Package registry holds the compiled Location table (spec.md §4.4): a
// static, code-defined mapping from location name to its ordered upstream
// URLs and geographic metadata. Editable only by code change — there is no
// runtime write path, deliberately, to remove hot-reload consistency bugs
// (spec.md §9).
//
// The logger-driven "enumerate candidates, log what's accepted/rejected"
// shape here follows the teacher's pkg/discovery.Discoverer, though the
// source of the data is a Go literal instead of a system scan.
package registry

import (
	surf "github.com/shahar42/surf-lamp-engine/pkg"
	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// Registry is the O(1)-lookup compiled location table.
type Registry struct {
	logger    *logx.Logger
	locations map[string]surf.Location
}

// New builds a Registry from a compiled slice of locations. Duplicate
// names are rejected in favor of the first occurrence, logged as a warning
// since it likely indicates a deploy misconfiguration.
func New(logger *logx.Logger, locations []surf.Location) *Registry {
	r := &Registry{
		logger:    logger,
		locations: make(map[string]surf.Location, len(locations)),
	}
	for _, loc := range locations {
		if _, exists := r.locations[loc.Name]; exists {
			logger.Warn("duplicate location in compiled registry, keeping first", "location", loc.Name)
			continue
		}
		r.locations[loc.Name] = loc
	}
	return r
}

// Lookup returns the Location for name, or false if it isn't in the
// compiled table.
func (r *Registry) Lookup(name string) (surf.Location, bool) {
	loc, ok := r.locations[name]
	return loc, ok
}

// All returns every compiled location, unordered.
func (r *Registry) All() []surf.Location {
	out := make([]surf.Location, 0, len(r.locations))
	for _, loc := range r.locations {
		out = append(out, loc)
	}
	return out
}

// ActiveLocations intersects the compiled table with inUse (the set of
// distinct device.location values the Repository reports), per spec.md
// §4.4's activeLocations() contract. Names in inUse that aren't in the
// compiled table are skipped with a warning rather than failing the whole
// cycle — a device pointed at a retired location shouldn't block every
// other location's ingestion.
func (r *Registry) ActiveLocations(inUse map[string]struct{}) []surf.Location {
	out := make([]surf.Location, 0, len(inUse))
	for name := range inUse {
		loc, ok := r.locations[name]
		if !ok {
			r.logger.Warn("device references location absent from compiled registry", "location", name)
			continue
		}
		out = append(out, loc)
	}
	return out
}

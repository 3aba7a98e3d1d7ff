// Package region holds the catalog of forecastable regions and the ordered
// selection a user builds from it.
package region

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// DefaultStates is the built-in catalog: US states plus the District of
// Columbia, named without spaces the way the prediction service keys them.
var DefaultStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "DistrictofColumbia", "Florida", "Georgia",
	"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
	"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
	"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada", "NewHampshire",
	"NewJersey", "NewMexico", "NewYork", "NorthCarolina", "NorthDakota", "Ohio",
	"Oklahoma", "Oregon", "Pennsylvania", "RhodeIsland", "SouthCarolina",
	"SouthDakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia",
	"Washington", "WestVirginia", "Wisconsin", "Wyoming",
}

// Catalog is an immutable, ordered list of region names.
type Catalog struct {
	names []string
}

// NewCatalog builds a catalog, dropping blanks and duplicates.
func NewCatalog(names []string) Catalog {
	var sel Selection
	for _, n := range names {
		sel.Add(n)
	}
	return Catalog{names: sel.Regions()}
}

// Names returns a copy of the catalog entries.
func (c Catalog) Names() []string { return slices.Clone(c.names) }

// Len returns the number of regions.
func (c Catalog) Len() int { return len(c.names) }

// Contains reports whether name is in the catalog.
func (c Catalog) Contains(name string) bool { return slices.Contains(c.names, name) }

// First returns the first region, or "" for an empty catalog.
func (c Catalog) First() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

// Lister returns the regions the prediction service can forecast.
type Lister interface {
	Regions(ctx context.Context) ([]string, error)
}

// Cache persists a fetched catalog between sessions.
type Cache interface {
	LoadRegions() (names []string, fetchedAt time.Time, err error)
	SaveRegions(names []string) error
}

// LoadResult describes where a catalog came from.
type LoadResult struct {
	Catalog   Catalog
	FetchedAt time.Time
	FromCache bool
	// Stale is set when the fetch failed and an expired cache entry was used.
	Stale    bool
	FetchErr error
}

// Load returns the catalog, serving it from cache while it is younger than ttl
// and otherwise fetching it once from the lister. A nil cache disables caching.
// When the fetch fails, an expired cache entry is used if one exists.
func Load(ctx context.Context, l Lister, cache Cache, ttl time.Duration) (LoadResult, error) {
	var (
		cached    []string
		fetchedAt time.Time
	)
	if cache != nil {
		var err error
		cached, fetchedAt, err = cache.LoadRegions()
		if err != nil {
			cached = nil
		}
		if len(cached) > 0 && ttl > 0 && time.Since(fetchedAt) < ttl {
			return LoadResult{Catalog: NewCatalog(cached), FetchedAt: fetchedAt, FromCache: true}, nil
		}
	}

	names, err := l.Regions(ctx)
	if err == nil && len(names) == 0 {
		err = errors.New("no regions available")
	}
	if err != nil {
		if len(cached) > 0 {
			return LoadResult{
				Catalog:   NewCatalog(cached),
				FetchedAt: fetchedAt,
				FromCache: true,
				Stale:     true,
				FetchErr:  err,
			}, nil
		}
		return LoadResult{}, fmt.Errorf("loading regions: %w", err)
	}

	if cache != nil {
		_ = cache.SaveRegions(names)
	}
	return LoadResult{Catalog: NewCatalog(names), FetchedAt: time.Now()}, nil
}

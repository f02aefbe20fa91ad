package geocode

import (
	"context"
	"log"
	"strings"
	"sync"
)

// townFields is the ranked list of structured address components tried when
// picking a locality out of a provider match. First non-empty wins.
var townFields = []func(PlaceAddress) string{
	func(a PlaceAddress) string { return a.City },
	func(a PlaceAddress) string { return a.Town },
	func(a PlaceAddress) string { return a.Municipality },
	func(a PlaceAddress) string { return a.County },
	func(a PlaceAddress) string { return a.StateDistrict },
	func(a PlaceAddress) string { return a.Suburb },
}

// Lookuper is the slice of the geocoding client the resolver needs.
type Lookuper interface {
	Lookup(ctx context.Context, query string) ([]Place, error)
}

// TownResult is what resolveTown hands back: a usable town name, always
// non-empty, plus the provider's display name for the match (or the input
// address when resolution fell back).
type TownResult struct {
	Town        string `json:"town"`
	DisplayName string `json:"display_name"`
	FromCache   bool   `json:"-"`
}

type cacheEntry struct {
	town        string
	displayName string
}

// Resolver turns a free-text address into a best-effort town name. It never
// fails: lookup failures collapse into the configured fallback town. Results
// are cached under the exact input address for the life of the process, up to
// maxEntries.
type Resolver struct {
	client      Lookuper
	countryHint string
	fallback    string
	maxEntries  int

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewResolver(client Lookuper, countryHint, fallbackTown string, maxEntries int) *Resolver {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Resolver{
		client:      client,
		countryHint: countryHint,
		fallback:    fallbackTown,
		maxEntries:  maxEntries,
		cache:       make(map[string]cacheEntry),
	}
}

// FallbackTown returns the configured fallback locality.
func (r *Resolver) FallbackTown() string {
	return r.fallback
}

// ResolveTown resolves fullAddress to a town name. The address is split on
// commas and the segments are tried in reverse order (narrower administrative
// segments tend to sit late in a "street, area, city, state" address); the
// first segment whose provider match carries a ranked component wins.
func (r *Resolver) ResolveTown(ctx context.Context, fullAddress string) TownResult {
	if strings.TrimSpace(fullAddress) == "" {
		return TownResult{Town: r.fallback, DisplayName: fullAddress}
	}

	if entry, ok := r.cached(fullAddress); ok {
		return TownResult{Town: entry.town, DisplayName: entry.displayName, FromCache: true}
	}

	segments := strings.Split(fullAddress, ",")
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if len(seg) < 3 {
			continue
		}

		query := seg
		if r.countryHint != "" {
			query = seg + ", " + r.countryHint
		}

		places, err := r.client.Lookup(ctx, query)
		if err != nil {
			log.Printf("[resolver] lookup %q failed: %v", seg, err)
			continue
		}

		for _, place := range places {
			if town := pickTown(place.Address); town != "" {
				town = strings.ToUpper(town)
				r.store(fullAddress, cacheEntry{town: town, displayName: place.DisplayName})
				return TownResult{Town: town, DisplayName: place.DisplayName}
			}
		}
	}

	// No segment produced a locality; remember that too so the next add of
	// the same address skips the network round trips.
	r.store(fullAddress, cacheEntry{town: r.fallback, displayName: fullAddress})
	return TownResult{Town: r.fallback, DisplayName: fullAddress}
}

func pickTown(a PlaceAddress) string {
	for _, field := range townFields {
		if v := strings.TrimSpace(field(a)); v != "" {
			return v
		}
	}
	return ""
}

func (r *Resolver) cached(address string) (cacheEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[address]
	return entry, ok
}

func (r *Resolver) store(address string, entry cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cache) >= r.maxEntries {
		if _, exists := r.cache[address]; !exists {
			return
		}
	}
	r.cache[address] = entry
}

// CacheSize reports the number of resolved addresses held in memory.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

package geocode

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeLookuper records queries and serves canned matches keyed by the segment
// (the part of the query before the country hint).
type fakeLookuper struct {
	calls   []string
	results map[string][]Place
}

func (f *fakeLookuper) Lookup(ctx context.Context, query string) ([]Place, error) {
	f.calls = append(f.calls, query)
	seg := strings.TrimSuffix(query, ", Nigeria")
	if places, ok := f.results[seg]; ok {
		return places, nil
	}
	return nil, fmt.Errorf("%w: no results", ErrLookupFailed)
}

func newTestResolver(f *fakeLookuper) *Resolver {
	return NewResolver(f, "Nigeria", "UNKNOWN", 100)
}

func TestResolveTownEmptyAddress(t *testing.T) {
	f := &fakeLookuper{}
	r := newTestResolver(f)

	for _, addr := range []string{"", "   ", "\t"} {
		res := r.ResolveTown(context.Background(), addr)
		if res.Town != "UNKNOWN" {
			t.Errorf("ResolveTown(%q) = %q, want fallback", addr, res.Town)
		}
	}
	if len(f.calls) != 0 {
		t.Fatalf("blank addresses must not hit the network, got %d calls", len(f.calls))
	}
}

func TestResolveTownSegmentsReversed(t *testing.T) {
	f := &fakeLookuper{results: map[string][]Place{
		"Rivers State": {{
			DisplayName: "Rivers, Nigeria",
			Address:     PlaceAddress{StateDistrict: "Port Harcourt"},
		}},
	}}
	r := newTestResolver(f)

	res := r.ResolveTown(context.Background(), "14 Trans Amadi Road, Oginigba, Rivers State")
	if res.Town != "PORT HARCOURT" {
		t.Fatalf("expected PORT HARCOURT, got %q", res.Town)
	}
	// Rightmost segment must be tried first.
	if len(f.calls) == 0 || !strings.HasPrefix(f.calls[0], "Rivers State") {
		t.Errorf("expected first query for the last segment, got %v", f.calls)
	}
}

func TestResolveTownFieldPriority(t *testing.T) {
	tests := []struct {
		name    string
		address PlaceAddress
		want    string
	}{
		{"city wins over town", PlaceAddress{City: "Port Harcourt", Town: "Oyigbo"}, "PORT HARCOURT"},
		{"town wins over county", PlaceAddress{Town: "Oyigbo", County: "Rivers"}, "OYIGBO"},
		{"municipality before county", PlaceAddress{Municipality: "Obio-Akpor", County: "Rivers"}, "OBIO-AKPOR"},
		{"county before suburb", PlaceAddress{County: "Ikeja", Suburb: "Allen"}, "IKEJA"},
		{"suburb as last resort", PlaceAddress{Suburb: "Allen"}, "ALLEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeLookuper{results: map[string][]Place{
				"Some Area": {{DisplayName: "match", Address: tt.address}},
			}}
			res := newTestResolver(f).ResolveTown(context.Background(), "Some Area")
			if res.Town != tt.want {
				t.Errorf("got %q, want %q", res.Town, tt.want)
			}
		})
	}
}

func TestResolveTownCachesExactAddress(t *testing.T) {
	f := &fakeLookuper{results: map[string][]Place{
		"Ikeja": {{DisplayName: "Ikeja, Lagos, Nigeria", Address: PlaceAddress{City: "Ikeja"}}},
	}}
	r := newTestResolver(f)

	addr := "23 Allen Avenue, Ikeja"
	first := r.ResolveTown(context.Background(), addr)
	callsAfterFirst := len(f.calls)

	second := r.ResolveTown(context.Background(), addr)
	if len(f.calls) != callsAfterFirst {
		t.Fatalf("cached address issued %d extra calls", len(f.calls)-callsAfterFirst)
	}
	if !second.FromCache {
		t.Error("second resolution should come from cache")
	}
	if second.Town != first.Town || second.Town != "IKEJA" {
		t.Errorf("cache returned %q, first resolution was %q", second.Town, first.Town)
	}

	// A different string, even a near-match, is a different key.
	r.ResolveTown(context.Background(), addr+" ")
	if len(f.calls) == callsAfterFirst {
		t.Error("near-match address should not hit the exact-match cache")
	}
}

func TestResolveTownFallbackIsCached(t *testing.T) {
	f := &fakeLookuper{}
	r := newTestResolver(f)

	addr := "Plot 7, Nowhere Street"
	res := r.ResolveTown(context.Background(), addr)
	if res.Town != "UNKNOWN" {
		t.Fatalf("expected fallback town, got %q", res.Town)
	}
	if res.DisplayName != addr {
		t.Errorf("fallback display name should echo the address, got %q", res.DisplayName)
	}

	calls := len(f.calls)
	r.ResolveTown(context.Background(), addr)
	if len(f.calls) != calls {
		t.Error("failed resolution should be cached too")
	}
}

func TestResolveTownCacheBound(t *testing.T) {
	f := &fakeLookuper{}
	r := NewResolver(f, "Nigeria", "UNKNOWN", 2)
	ctx := context.Background()

	addresses := []string{
		"1 First Street, Aba",
		"2 Second Street, Owerri",
		"3 Third Street, Enugu",
	}
	for _, addr := range addresses {
		r.ResolveTown(ctx, addr)
	}
	if r.CacheSize() != 2 {
		t.Fatalf("CacheSize() = %d, want the configured bound of 2", r.CacheSize())
	}

	// The address past the bound was not cached and re-queries.
	calls := len(f.calls)
	r.ResolveTown(ctx, addresses[2])
	if len(f.calls) == calls {
		t.Error("address past the bound should re-query the client")
	}

	// Entries inside the bound still serve hits.
	calls = len(f.calls)
	if res := r.ResolveTown(ctx, addresses[0]); !res.FromCache {
		t.Error("bounded entry should come from cache")
	}
	if len(f.calls) != calls {
		t.Error("cached address must not hit the client")
	}
}

func TestResolveTownSkipsShortSegments(t *testing.T) {
	f := &fakeLookuper{results: map[string][]Place{
		"Aba": {{DisplayName: "Aba, Abia, Nigeria", Address: PlaceAddress{City: "Aba"}}},
	}}
	r := newTestResolver(f)

	r.ResolveTown(context.Background(), "No 2, KM, Aba")
	for _, call := range f.calls {
		seg := strings.TrimSuffix(call, ", Nigeria")
		if len(seg) < 3 {
			t.Errorf("segment %q below minimum length was queried", seg)
		}
	}
}

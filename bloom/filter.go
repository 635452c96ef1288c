// Package bloom remembers which page URLs a run has already handled
// using a Bloom filter.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/bkayser/concierge"
)

var _ concierge.SeenFilter = (*Filter)(nil)

// Defaults sized for a curated URL list.
const (
	DefaultCapacity = 10000
	DefaultFPRate   = 1e-6
)

// Filter records canonical page URLs. False positives are possible at
// the configured rate; false negatives are not.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs with the
// given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen reports whether rawURL was already recorded and records it.
func (f *Filter) Seen(rawURL string) bool {
	return f.f.TestAndAddString(Canonical(rawURL))
}

// Test reports whether rawURL might have been recorded.
func (f *Filter) Test(rawURL string) bool {
	return f.f.TestString(Canonical(rawURL))
}

// EstimatedCount returns the approximate number of URLs recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Canonical returns the form of rawURL used for comparison: lower-cased
// scheme and host without "www.", no fragment, no trailing slash. URLs
// that do not parse are returned unchanged.
func Canonical(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// Package tracker counts links whose host has no matching provider so that
// only the first occurrence per host is logged and reported.
package tracker

import (
	"net"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Unsupported is a deduplicating host -> occurrence counter. The
// check-and-increment in Record is atomic per host.
type Unsupported struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewUnsupported creates an empty tracker. One tracker lives for one process run.
func NewUnsupported() *Unsupported {
	return &Unsupported{counts: make(map[string]int)}
}

// Record increments the counter for host and reports whether this was the
// first occurrence in the run.
func (u *Unsupported) Record(host string) (first bool) {
	host = strings.ToLower(strings.TrimSpace(host))

	u.mu.Lock()
	defer u.mu.Unlock()

	u.counts[host]++
	return u.counts[host] == 1
}

// Count returns the occurrences recorded for host.
func (u *Unsupported) Count(host string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[strings.ToLower(strings.TrimSpace(host))]
}

// Snapshot returns a copy of the counter map.
func (u *Unsupported) Snapshot() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]int, len(u.counts))
	for k, v := range u.counts {
		out[k] = v
	}
	return out
}

// Total returns the sum of all occurrences.
func (u *Unsupported) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	n := 0
	for _, v := range u.counts {
		n += v
	}
	return n
}

// DomainCount is one row of the grouped summary.
type DomainCount struct {
	Domain string
	Hosts  []string
	Count  int
}

// ByRegistrableDomain groups hosts by eTLD+1 (files.example.org and
// cdn.example.org both land under example.org), sorted by count descending.
// Hosts that have no registrable domain (IPs, localhost) are kept as-is.
func (u *Unsupported) ByRegistrableDomain() []DomainCount {
	groups := make(map[string]*DomainCount)
	for host, n := range u.Snapshot() {
		d := host
		if net.ParseIP(host) == nil {
			if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
				d = etld1
			}
		}
		g, ok := groups[d]
		if !ok {
			g = &DomainCount{Domain: d}
			groups[d] = g
		}
		g.Hosts = append(g.Hosts, host)
		g.Count += n
	}

	out := make([]DomainCount, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.Hosts)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

package engine

import (
	"time"

	"github.com/use-agent/docscout/cache"
)

// maxDomains bounds how many hosts DomainMemory tracks. A crawl touches
// marham.pk and a handful of search providers, so this is generous.
const maxDomains = 256

// DomainMemory records the engine that last won the race for each host so
// the next fetch can skip straight to it. Entries expire after the TTL. A
// nil *DomainMemory remembers nothing.
type DomainMemory struct {
	winners *cache.Cache[string]
}

// NewDomainMemory returns a DomainMemory whose entries live for ttl.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{winners: cache.New[string](maxDomains, ttl)}
}

// Get returns the engine remembered for host, or "".
func (m *DomainMemory) Get(host string) string {
	if m == nil {
		return ""
	}
	name, _ := m.winners.Get(host)
	return name
}

// Set remembers engineName as the winner for host.
func (m *DomainMemory) Set(host, engineName string) {
	if m != nil {
		m.winners.Set(host, engineName)
	}
}

// Delete forgets host, typically after the remembered engine failed.
func (m *DomainMemory) Delete(host string) {
	if m != nil {
		m.winners.Delete(host)
	}
}

// Len reports how many hosts are remembered, expired ones included.
func (m *DomainMemory) Len() int {
	if m == nil {
		return 0
	}
	return m.winners.Len()
}

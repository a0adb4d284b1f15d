// Package hitregistry keeps the process-wide count of how many times each
// call site has been hit.
//
// Counts only grow. RecordAndGet is the single mutation path; every other
// method reads a snapshot.
package hitregistry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/on-the-ground/infrequent_go/callsite"
)

const defaultShards = 32

// Registry maps call-site fingerprints to hit counts.
//
// Fingerprints are partitioned across shards by hash, so hits on different
// call sites rarely contend while hits on the same call site serialize on one
// shard lock.
type Registry struct {
	id     string
	shards []shard
}

type shard struct {
	mu   sync.Mutex
	hits map[string]uint64
}

// Stats summarizes a registry.
type Stats struct {
	Sites uint64
	Hits  uint64
}

// Entry is one call site and its count at the time of a Snapshot.
type Entry struct {
	Site callsite.Fingerprint
	Hits uint64
}

type Option func(*config)

type config struct {
	shards int
}

// WithShards sets the number of partitions. n must be greater than zero.
func WithShards(n int) Option {
	return func(c *config) {
		c.shards = n
	}
}

func New(opts ...Option) *Registry {
	cfg := config{shards: defaultShards}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shards <= 0 {
		panic("number of shards should be greater than 0")
	}

	shards := make([]shard, cfg.shards)
	for i := range shards {
		shards[i].hits = make(map[string]uint64)
	}
	return &Registry{
		id:     uuid.New().String(),
		shards: shards,
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

func (r *Registry) ID() string { return r.id }

// RecordAndGet counts one hit for fp and returns the new total.
// Concurrent calls for the same fingerprint observe consecutive totals.
func (r *Registry) RecordAndGet(fp callsite.Fingerprint) uint64 {
	s := r.shardOf(fp)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits[fp.Key()]++
	return s.hits[fp.Key()]
}

// Count returns the hits recorded for fp, or zero if it was never hit.
func (r *Registry) Count(fp callsite.Fingerprint) uint64 {
	s := r.shardOf(fp)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[fp.Key()]
}

// Len returns the number of distinct call sites recorded.
func (r *Registry) Len() int {
	n := 0
	r.each(func(s *shard) {
		n += len(s.hits)
	})
	return n
}

func (r *Registry) Stats() Stats {
	var st Stats
	r.each(func(s *shard) {
		st.Sites += uint64(len(s.hits))
		for _, h := range s.hits {
			st.Hits += h
		}
	})
	return st
}

// Snapshot lists every call site, most hit first.
func (r *Registry) Snapshot() []Entry {
	var entries []Entry
	r.each(func(s *shard) {
		for k, h := range s.hits {
			entries = append(entries, Entry{Site: callsite.FromKey(k), Hits: h})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hits != entries[j].Hits {
			return entries[i].Hits > entries[j].Hits
		}
		return entries[i].Site.Key() < entries[j].Site.Key()
	})
	return entries
}

func (r *Registry) each(fn func(*shard)) {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		fn(s)
		s.mu.Unlock()
	}
}

func (r *Registry) shardOf(fp callsite.Fingerprint) *shard {
	return &r.shards[getIndexByHash(fp, len(r.shards))]
}

func getIndexByHash(fp callsite.Fingerprint, numShards int) int {
	switch numShards {
	case 0:
		panic("number of shards cannot be 0")
	case 1:
		return 0
	default:
		return int(fp.Hash() % uint64(numShards))
	}
}

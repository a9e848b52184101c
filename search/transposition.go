package search

import (
	"sync"
	"sync/atomic"

	"github.com/cdbfoster/zero-sum-sub001/game"
)

// Bound indicates the type of score stored in a transposition entry.
type Bound uint8

const (
	BoundExact Bound = iota // score is the true value of the node
	BoundLower              // failed high (beta cutoff)
	BoundUpper              // failed low (no candidate raised alpha)
)

// Number of shards for table locking (power of 2 for fast modulo).
const ttShardCount = 64
const ttShardMask = ttShardCount - 1

// DefaultTableSize is the entry capacity used when Config.TableSize is zero.
const DefaultTableSize = 1 << 20

// Entry is one transposition-table record.
type Entry[P game.Ply] struct {
	Key     uint64 // full position hash, for collision verification
	BestPly P      // best ply found at this node
	Score   game.Eval
	Depth   int8 // remaining depth the score was searched to
	Bound   Bound
	Age     uint8 // generation, for replacement
	valid   bool
}

// SavedEntry is the persistable form of an Entry. Plies are opaque and valid
// only relative to the state that produced them, so snapshots carry the
// score information but not the best ply; a restored entry still narrows
// windows, it just cannot seed move ordering.
type SavedEntry struct {
	Key   uint64    `json:"key"`
	Score game.Eval `json:"score"`
	Depth int8      `json:"depth"`
	Bound Bound     `json:"bound"`
}

// TranspositionTable caches search results keyed by position identity. It is
// purely an optimization and move-ordering aid: the search is correct with
// the table at any capacity, including a table that never retains anything.
//
// Access is guarded by sharded locks so an engine instance can be reused
// (or a table shared) across goroutines.
type TranspositionTable[P game.Ply] struct {
	entries []Entry[P]
	shards  [ttShardCount]sync.RWMutex
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
	stores atomic.Uint64
}

// NewTranspositionTable creates a table holding at most capacity entries,
// rounded down to a power of two (minimum 1).
func NewTranspositionTable[P game.Ply](capacity int) *TranspositionTable[P] {
	n := roundDownToPowerOf2(uint64(capacity))
	if n < 1 {
		n = 1
	}
	return &TranspositionTable[P]{
		entries: make([]Entry[P], n),
		mask:    n - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable[P]) shardIndex(idx uint64) int {
	return int(idx & ttShardMask)
}

// Probe looks up a position. A miss is never an error; the caller decides
// usability from the entry's depth and bound.
func (tt *TranspositionTable[P]) Probe(hash uint64) (Entry[P], bool) {
	tt.probes.Add(1)

	idx := hash & tt.mask
	shard := tt.shardIndex(idx)

	tt.shards[shard].RLock()
	entry := tt.entries[idx]
	tt.shards[shard].RUnlock()

	if entry.valid && entry.Key == hash {
		tt.hits.Add(1)
		return entry, true
	}
	return Entry[P]{}, false
}

// Store inserts or replaces the entry for hash. An entry from the current
// generation is only replaced by a deeper or equally deep one; entries from
// earlier generations are replaced unconditionally. Returns whether the
// entry was written.
func (tt *TranspositionTable[P]) Store(hash uint64, depth int, score game.Eval, bound Bound, best P) bool {
	idx := hash & tt.mask
	shard := tt.shardIndex(idx)
	currentAge := uint8(tt.age.Load())

	tt.shards[shard].Lock()
	defer tt.shards[shard].Unlock()

	entry := &tt.entries[idx]
	if entry.valid && entry.Age == currentAge && depth < int(entry.Depth) {
		return false
	}

	entry.Key = hash
	entry.BestPly = best
	entry.Score = score
	entry.Depth = int8(depth)
	entry.Bound = bound
	entry.Age = currentAge
	entry.valid = true
	tt.stores.Add(1)
	return true
}

// NewSearch increments the generation counter. Entries from previous
// searches become replaceable regardless of depth.
func (tt *TranspositionTable[P]) NewSearch() {
	tt.age.Add(1)
}

// Clear empties the table and resets all counters.
func (tt *TranspositionTable[P]) Clear() {
	for s := range tt.shards {
		tt.shards[s].Lock()
	}
	for i := range tt.entries {
		tt.entries[i] = Entry[P]{}
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
	tt.stores.Store(0)
	for s := len(tt.shards) - 1; s >= 0; s-- {
		tt.shards[s].Unlock()
	}
}

// Size returns the entry capacity of the table.
func (tt *TranspositionTable[P]) Size() uint64 {
	return uint64(len(tt.entries))
}

// HashFull returns the permille of the sampled table that holds entries from
// the current generation.
func (tt *TranspositionTable[P]) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > tt.Size() {
		sampleSize = int(tt.Size())
	}
	currentAge := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].valid && tt.entries[i].Age == currentAge {
			used++
		}
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the fraction of probes that found a matching entry, as a
// percentage.
func (tt *TranspositionTable[P]) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Snapshot copies out every live entry in persistable form.
func (tt *TranspositionTable[P]) Snapshot() []SavedEntry {
	for s := range tt.shards {
		tt.shards[s].RLock()
	}
	saved := make([]SavedEntry, 0, len(tt.entries))
	for i := range tt.entries {
		e := &tt.entries[i]
		if !e.valid {
			continue
		}
		saved = append(saved, SavedEntry{
			Key:   e.Key,
			Score: e.Score,
			Depth: e.Depth,
			Bound: e.Bound,
		})
	}
	for s := len(tt.shards) - 1; s >= 0; s-- {
		tt.shards[s].RUnlock()
	}
	return saved
}

// Restore loads a snapshot, subject to the normal replacement policy.
// Restored entries carry no best ply.
func (tt *TranspositionTable[P]) Restore(saved []SavedEntry) {
	var zero P
	for _, e := range saved {
		tt.Store(e.Key, int(e.Depth), e.Score, e.Bound, zero)
	}
}

// Scores of decided positions are stored relative to the node they were
// found at, not the root, so that an entry reached through a transposition
// at a different ply still reports the correct distance to the win.

func adjustScoreToTT(score game.Eval, ply int) game.Eval {
	if score.IsWin() {
		return score + game.Eval(ply)
	}
	if score.IsLoss() {
		return score - game.Eval(ply)
	}
	return score
}

func adjustScoreFromTT(score game.Eval, ply int) game.Eval {
	if score.IsWin() {
		return score - game.Eval(ply)
	}
	if score.IsLoss() {
		return score + game.Eval(ply)
	}
	return score
}

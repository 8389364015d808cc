package cfr

import "sync"

// InfoSet accumulates regret and average-strategy weight for one
// information-set key. Arity is fixed on first
// visit; every slice here has len == arity for the lifetime of the
// record.
type InfoSet struct {
	Key     string
	Arity   int
	Regrets []float64
	// StrategySum accumulates reach-weighted policy and is always
	// non-negative.
	StrategySum []float64
	// LastIter is the highest iteration index an update was applied
	// at. It is recorded and persisted in snapshots; the linear-averaging
	// weight of a visit comes from UpdateOptions.Iteration, not from it.
	LastIter int

	mu sync.Mutex
}

func newInfoSet(key string, arity int) *InfoSet {
	return &InfoSet{
		Key:         key,
		Arity:       arity,
		Regrets:     make([]float64, arity),
		StrategySum: make([]float64, arity),
	}
}

func (e *InfoSet) snapshot() (regrets, strategySum []float64, lastIter int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	regrets = append([]float64(nil), e.Regrets...)
	strategySum = append([]float64(nil), e.StrategySum...)
	lastIter = e.LastIter
	return
}

// infoSetTableShardCount must be a power of two. Table shards its
// backing map to keep reader lock contention low when a Trainer fans
// an iteration out across several parallel tables, each of which can
// reach and update the same shard, and the sharding keeps amortized
// lookup O(1) as the table grows into the millions of keys a real
// training run produces. Per-entry updates are still serialized by
// InfoSet's own mutex, but two tables updating the same entry in the
// same iteration can interleave their float additions in either
// order — see TrainerConfig's doc comment on ParallelTables for what that
// costs in determinism.
const infoSetTableShardCount = 64
const infoSetTableShardMask = infoSetTableShardCount - 1

type infoSetShard struct {
	mu      sync.RWMutex
	entries map[string]*InfoSet
}

// Table is the InfoSet table: a K -> InfoSet mapping, created
// lazily with the arity of the visiting node and mutated only by the
// traversal kernel of the owning Trainer.
type Table struct {
	shards [infoSetTableShardCount]infoSetShard
}

// NewTable returns an empty InfoSet table ready for use.
func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*InfoSet)
	}
	return t
}

func (t *Table) shardFor(key string) *infoSetShard {
	return &t.shards[fnv32(key)&infoSetTableShardMask]
}

// GetOrCreate returns the record for key, creating it with the given
// arity on first visit. A key that reappears with a different arity is
// an ArityMismatch error (invariant), which indicates aliasing
// in the Game's InfoSetKey implementation.
func (t *Table) GetOrCreate(key string, arity int) (*InfoSet, error) {
	shard := t.shardFor(key)

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		if entry.Arity != arity {
			return nil, newError(ArityMismatch, "key %q: arity %d != %d", key, arity, entry.Arity)
		}
		return entry, nil
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok = shard.entries[key]; ok {
		if entry.Arity != arity {
			return nil, newError(ArityMismatch, "key %q: arity %d != %d", key, arity, entry.Arity)
		}
		return entry, nil
	}

	entry = newInfoSet(key, arity)
	shard.entries[key] = entry
	return entry, nil
}

// Size returns the number of distinct info-set keys in the table.
func (t *Table) Size() int {
	total := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		total += len(t.shards[i].entries)
		t.shards[i].mu.RUnlock()
	}
	return total
}

// Range calls fn for every record in the table. Iteration order is
// unspecified. fn must not mutate the table.
func (t *Table) Range(fn func(*InfoSet)) {
	for i := range t.shards {
		t.shards[i].mu.RLock()
		for _, entry := range t.shards[i].entries {
			fn(entry)
		}
		t.shards[i].mu.RUnlock()
	}
}

func fnv32(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	hash := uint32(offset32)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

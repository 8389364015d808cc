package cfr

import "github.com/opencoff/go-chd"

// SealedIndex is a frozen, perfect-hashed view of a trained Table's
// average strategies. It is built once after training stops and serves
// lookups in O(1) with no map probing and no locking, at the cost of
// being immutable: Table mutation after Seal has no effect on it.
type SealedIndex struct {
	index      *chd.CHD
	keys       []string
	strategies [][]float64
}

// Seal snapshots every key currently in table and builds a SealedIndex
// over it.
func Seal(table *Table) (*SealedIndex, error) {
	var keys []string
	var strategies [][]float64
	table.Range(func(e *InfoSet) {
		keys = append(keys, e.Key)
		strategies = append(strategies, e.Average())
	})
	return seal(keys, strategies)
}

// SealSnapshot builds a SealedIndex directly from a Snapshot, without
// needing to reconstruct a live Table first.
func SealSnapshot(snap Snapshot) (*SealedIndex, error) {
	keys := make([]string, 0, len(snap.Entries))
	strategies := make([][]float64, 0, len(snap.Entries))
	for key, e := range snap.Entries {
		keys = append(keys, key)
		strategies = append(strategies, e.Average)
	}
	return seal(keys, strategies)
}

func seal(keys []string, strategies [][]float64) (*SealedIndex, error) {
	if len(keys) == 0 {
		return &SealedIndex{}, nil
	}

	b := chd.NewBuilder()
	for _, k := range keys {
		b.Add([]byte(k))
	}
	index, err := b.Freeze()
	if err != nil {
		return nil, newError(SnapshotIO, "seal infoset index: %v", err)
	}

	orderedKeys := make([]string, len(keys))
	orderedStrategies := make([][]float64, len(strategies))
	for i, k := range keys {
		slot := index.Find([]byte(k))
		orderedKeys[slot] = k
		orderedStrategies[slot] = strategies[i]
	}

	return &SealedIndex{index: index, keys: orderedKeys, strategies: orderedStrategies}, nil
}

// Strategy returns the average strategy recorded for key at seal time.
func (s *SealedIndex) Strategy(key string) ([]float64, bool) {
	if s == nil || s.index == nil {
		return nil, false
	}
	slot := s.index.Find([]byte(key))
	if int(slot) >= len(s.keys) || s.keys[slot] != key {
		return nil, false
	}
	return s.strategies[slot], true
}

// Len returns the number of keys in the index.
func (s *SealedIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

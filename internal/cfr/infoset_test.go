package cfr

import "testing"

func TestTableGetOrCreateIsLazyAndStable(t *testing.T) {
	table := NewTable()
	a, err := table.GetOrCreate("k1", 2)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	b, err := table.GetOrCreate("k1", 2)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if a != b {
		t.Fatal("expected the same InfoSet pointer on repeat lookup")
	}
	if table.Size() != 1 {
		t.Fatalf("table size = %d, want 1", table.Size())
	}
}

func TestTableGetOrCreateRejectsArityChange(t *testing.T) {
	table := NewTable()
	if _, err := table.GetOrCreate("k1", 2); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	_, err := table.GetOrCreate("k1", 3)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != ArityMismatch {
		t.Fatalf("err = %v, want ArityMismatch", err)
	}
}

func TestTableRangeVisitsEveryEntry(t *testing.T) {
	table := NewTable()
	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		if _, err := table.GetOrCreate(k, 2); err != nil {
			t.Fatalf("get or create: %v", err)
		}
	}
	seen := make(map[string]bool)
	table.Range(func(e *InfoSet) {
		seen[e.Key] = true
	})
	if len(seen) != len(keys) {
		t.Fatalf("visited %d entries, want %d", len(seen), len(keys))
	}
}

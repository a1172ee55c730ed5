package main

import "testing"

func TestSpatialHashInsertAndQuery(t *testing.T) {
	h := NewSpatialHash(10)
	c := &Collider{ID: "e1", X: 12, Z: 12, Radius: 1, Category: CatEnemy}
	h.Insert(c)

	found := false
	for _, r := range h.QueryNearby(10, 10, 5) {
		if r.ID == "e1" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find collider near (10,10)")
	}

	if got := h.QueryNearby(100, 100, 5); len(got) != 0 {
		t.Errorf("expected nothing near (100,100), got %d", len(got))
	}
}

func TestSpatialHashClear(t *testing.T) {
	h := NewSpatialHash(10)
	h.Insert(&Collider{ID: "a", X: 5, Z: 5, Radius: 1})
	h.Clear()

	if got := h.QueryNearby(5, 5, 10); len(got) != 0 {
		t.Errorf("expected 0 results after clear, got %d", len(got))
	}
}

func TestSpatialHashDedupesLargeColliders(t *testing.T) {
	h := NewSpatialHash(2)
	// spans many cells
	h.Insert(&Collider{ID: "big", X: 0, Z: 0, Radius: 7})

	got := h.QueryNearby(0, 0, 7)
	if len(got) != 1 {
		t.Fatalf("expected the big collider once, got %d", len(got))
	}
}

func TestSpatialHashNegativeCoordinates(t *testing.T) {
	h := NewSpatialHash(10)
	h.Insert(&Collider{ID: "neg", X: -0.5, Z: -0.5, Radius: 0.1})
	h.Insert(&Collider{ID: "pos", X: 0.5, Z: 0.5, Radius: 0.1})

	got := h.QueryNearby(-5, -5, 1)
	if len(got) != 1 || got[0].ID != "neg" {
		t.Errorf("expected only the negative-cell collider, got %v", ids(got))
	}
}

func TestSpatialHashZeroCellSize(t *testing.T) {
	h := NewSpatialHash(0)
	if h.CellSize() != 1 {
		t.Errorf("expected fallback cell size 1, got %v", h.CellSize())
	}
}

func ids(cs []*Collider) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

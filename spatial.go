package main

import "math"

// SpatialHash buckets colliders by (x, z) cell. It is cleared and rebuilt
// every frame; there is no incremental update.
type SpatialHash struct {
	cellSize float64
	cells    map[int32][]*Collider
	seen     map[string]struct{}
	result   []*Collider
}

// NewSpatialHash creates a hash with the given cell size
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		cellSize: cellSize,
		cells:    make(map[int32][]*Collider, 256),
		seen:     make(map[string]struct{}, 64),
		result:   make([]*Collider, 0, 64),
	}
}

// cellKey packs two signed 16-bit cell coordinates into one int32
func cellKey(cx, cz int) int32 {
	return int32(uint32(uint16(int16(cx)))<<16 | uint32(uint16(int16(cz))))
}

func (h *SpatialHash) cellRange(x, z, radius float64) (minCX, maxCX, minCZ, maxCZ int) {
	minCX = int(math.Floor((x - radius) / h.cellSize))
	maxCX = int(math.Floor((x + radius) / h.cellSize))
	minCZ = int(math.Floor((z - radius) / h.cellSize))
	maxCZ = int(math.Floor((z + radius) / h.cellSize))
	return
}

// Clear empties every bucket, keeping allocated capacity
func (h *SpatialHash) Clear() {
	for k, bucket := range h.cells {
		h.cells[k] = bucket[:0]
	}
}

// Insert adds the collider to every cell its bounding circle overlaps
func (h *SpatialHash) Insert(c *Collider) {
	minCX, maxCX, minCZ, maxCZ := h.cellRange(c.X, c.Z, c.Radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			key := cellKey(cx, cz)
			h.cells[key] = append(h.cells[key], c)
		}
	}
}

// QueryNearby returns every collider in the cells covered by the query
// circle, each once. The slice is reused by the next call.
func (h *SpatialHash) QueryNearby(x, z, radius float64) []*Collider {
	h.result = h.result[:0]
	clear(h.seen)
	minCX, maxCX, minCZ, maxCZ := h.cellRange(x, z, radius)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, c := range h.cells[cellKey(cx, cz)] {
				if _, dup := h.seen[c.ID]; dup {
					continue
				}
				h.seen[c.ID] = struct{}{}
				h.result = append(h.result, c)
			}
		}
	}
	return h.result
}

// CellSize returns the configured cell size
func (h *SpatialHash) CellSize() float64 {
	return h.cellSize
}

package main

// Category tags a collider for the collision matrix
type Category uint8

const (
	CatPlayer Category = iota
	CatEnemy
	CatProjectile
	CatXPOrb
	CatBoss
	CatBossProjectile
	CatShockwave
	CatEnemyProjectile
	CatHealGem
	CatFragmentGem
	CatRareItem
	catCount
)

var categoryNames = [catCount]string{
	"player", "enemy", "projectile", "xpOrb", "boss", "bossProjectile",
	"shockwave", "enemyProjectile", "healGem", "fragmentGem", "rareItem",
}

func (c Category) String() string {
	if c >= catCount {
		return "unknown"
	}
	return categoryNames[c]
}

// collisionPairs lists every category pair that may collide. Pairs not in
// this list (enemy/enemy, projectile/player, ...) never collide.
var collisionPairs = [...][2]Category{
	{CatPlayer, CatEnemy},
	{CatProjectile, CatEnemy},
	{CatPlayer, CatXPOrb},
	{CatBoss, CatProjectile},
	{CatBossProjectile, CatPlayer},
	{CatBoss, CatPlayer},
	{CatPlayer, CatShockwave},
	{CatEnemyProjectile, CatPlayer},
	{CatHealGem, CatPlayer},
	{CatFragmentGem, CatPlayer},
	{CatPlayer, CatRareItem},
}

var collisionMatrix [catCount][catCount]bool

func init() {
	for _, p := range collisionPairs {
		collisionMatrix[p[0]][p[1]] = true
		collisionMatrix[p[1]][p[0]] = true
	}
}

// CheckPair reports whether two categories are allowed to collide.
// The lookup is symmetric.
func CheckPair(a, b Category) bool {
	if a >= catCount || b >= catCount {
		return false
	}
	return collisionMatrix[a][b]
}

// Collider is the per-frame descriptor registered in the spatial hash.
// Index points back into the owning array.
type Collider struct {
	ID       string
	Index    int
	X, Z     float64
	Radius   float64
	Category Category
}

// ColliderPool is a fixed arena of descriptors reused every frame by slot
type ColliderPool struct {
	slots []Collider
}

// NewColliderPool pre-allocates capacity descriptors
func NewColliderPool(capacity int) *ColliderPool {
	return &ColliderPool{slots: make([]Collider, capacity)}
}

// Acquire returns the descriptor at slot i, growing the arena only if a
// frame needs more slots than any previous frame.
func (p *ColliderPool) Acquire(i int) *Collider {
	if i >= len(p.slots) {
		grown := make([]Collider, i*2+1)
		copy(grown, p.slots)
		p.slots = grown
	}
	return &p.slots[i]
}

// Cap returns the arena size
func (p *ColliderPool) Cap() int {
	return len(p.slots)
}

// CirclesOverlap reports whether two circles overlap. Circles that exactly
// touch do not overlap.
func CirclesOverlap(x1, z1, r1, x2, z2, r2 float64) bool {
	dx := x2 - x1
	dz := z2 - z1
	sum := r1 + r2
	return dx*dx+dz*dz < sum*sum
}

// SweptCircleHit reports whether the segment (prevX,prevZ)-(currX,currZ)
// passes within r of (cx,cz). Used for fast projectiles that could skip a
// thin target between two frames.
func SweptCircleHit(prevX, prevZ, currX, currZ, cx, cz, r float64) bool {
	dx := currX - prevX
	dz := currZ - prevZ
	lenSq := dx*dx + dz*dz
	if lenSq < 1e-12 {
		return DistanceSq(prevX, prevZ, cx, cz) <= r*r
	}
	t := ((cx-prevX)*dx + (cz-prevZ)*dz) / lenSq
	t = Clamp(t, 0, 1)
	px := prevX + dx*t
	pz := prevZ + dz*t
	return DistanceSq(px, pz, cx, cz) <= r*r
}

// CollisionSystem wraps a spatial hash with the category matrix
type CollisionSystem struct {
	hash   *SpatialHash
	result []*Collider
}

// NewCollisionSystem creates a collision system with the given cell size
func NewCollisionSystem(cellSize float64) *CollisionSystem {
	return &CollisionSystem{
		hash:   NewSpatialHash(cellSize),
		result: make([]*Collider, 0, 32),
	}
}

// Clear empties the hash; call once per frame before registering
func (cs *CollisionSystem) Clear() {
	cs.hash.Clear()
}

// RegisterEntity inserts a collider for this frame
func (cs *CollisionSystem) RegisterEntity(c *Collider) {
	cs.hash.Insert(c)
}

// CheckPair reports whether two categories may collide
func (cs *CollisionSystem) CheckPair(a, b Category) bool {
	return CheckPair(a, b)
}

// QueryCollisions returns the colliders of category target that overlap c.
// The slice is reused by the next call.
func (cs *CollisionSystem) QueryCollisions(c *Collider, target Category) []*Collider {
	cs.result = cs.result[:0]
	if !CheckPair(c.Category, target) {
		return cs.result
	}
	for _, other := range cs.hash.QueryNearby(c.X, c.Z, c.Radius) {
		if other.Category != target || other.ID == c.ID {
			continue
		}
		if CirclesOverlap(c.X, c.Z, c.Radius, other.X, other.Z, other.Radius) {
			cs.result = append(cs.result, other)
		}
	}
	return cs.result
}

// QueryNearby exposes the raw broad phase for swept tests
func (cs *CollisionSystem) QueryNearby(x, z, radius float64) []*Collider {
	return cs.hash.QueryNearby(x, z, radius)
}

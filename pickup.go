package main

// OverflowPolicy decides what a full pool does with a new spawn
type OverflowPolicy uint8

const (
	RecycleOldest  OverflowPolicy = iota // overwrite the longest-lived slot
	RejectWhenFull                       // drop the spawn
)

// PickupKind tags which pool a pickup belongs to
type PickupKind uint8

const (
	PickupXPOrb PickupKind = iota
	PickupHealGem
	PickupFragmentGem
	PickupRareItem
)

// Category returns the collision category for pickups of this kind
func (k PickupKind) Category() Category {
	switch k {
	case PickupHealGem:
		return CatHealGem
	case PickupFragmentGem:
		return CatFragmentGem
	case PickupRareItem:
		return CatRareItem
	}
	return CatXPOrb
}

// RareItemType selects what a rare item does when collected
type RareItemType uint8

const (
	RareMagnet RareItemType = iota // magnetizes every XP orb
	RareBomb                       // damages every enemy
	RareRepair                     // restores full HP
	rareItemCount
)

var rareItemNames = [rareItemCount]string{"magnet", "bomb", "repair"}

func (t RareItemType) String() string {
	if t >= rareItemCount {
		return "unknown"
	}
	return rareItemNames[t]
}

// Pickup is one pool slot. Value is XP, heal amount or fragment count
// depending on the pool.
type Pickup struct {
	ID           uint64
	X, Z         float64
	Value        float64
	ItemType     RareItemType
	IsRare       bool
	IsMagnetized bool
	ElapsedTime  float64
}

// PickupPool is a fixed array of slots. Slots [0, active) are live.
type PickupPool struct {
	cfg    *Config
	kind   PickupKind
	policy OverflowPolicy
	slots  []Pickup
	active int
	nextID uint64
}

// NewPickupPool allocates every slot up front
func NewPickupPool(cfg *Config, kind PickupKind, capacity int, policy OverflowPolicy) *PickupPool {
	if capacity < 0 {
		capacity = 0
	}
	return &PickupPool{
		cfg:    cfg,
		kind:   kind,
		policy: policy,
		slots:  make([]Pickup, capacity),
	}
}

// Kind returns the pool's pickup kind
func (p *PickupPool) Kind() PickupKind { return p.kind }

// Slots returns the live region
func (p *PickupPool) Slots() []Pickup { return p.slots[:p.active] }

// ActiveCount returns the number of live slots
func (p *PickupPool) ActiveCount() int { return p.active }

// Cap returns the fixed capacity
func (p *PickupPool) Cap() int { return len(p.slots) }

// Spawn writes pk into a free slot, or applies the overflow policy when
// full. Every field of the target slot is overwritten. Returns the slot
// index and false if the spawn was rejected.
func (p *PickupPool) Spawn(pk Pickup) (int, bool) {
	if len(p.slots) == 0 {
		return -1, false
	}
	idx := p.active
	if p.active < len(p.slots) {
		p.active++
	} else {
		if p.policy == RejectWhenFull {
			return -1, false
		}
		idx = p.oldest()
	}
	p.nextID++
	pk.ID = p.nextID
	pk.ElapsedTime = 0
	p.slots[idx] = pk
	return idx, true
}

// oldest returns the live slot with the highest elapsed time
func (p *PickupPool) oldest() int {
	idx := 0
	for i := 1; i < p.active; i++ {
		if p.slots[i].ElapsedTime > p.slots[idx].ElapsedTime {
			idx = i
		}
	}
	return idx
}

// Collect removes the live slot at i by moving the last live slot into it.
// Returns the removed contents.
func (p *PickupPool) Collect(i int) (Pickup, bool) {
	if i < 0 || i >= p.active {
		return Pickup{}, false
	}
	out := p.slots[i]
	p.active--
	if i != p.active {
		p.slots[i] = p.slots[p.active]
	}
	p.slots[p.active] = Pickup{}
	return out, true
}

// Update ages every live slot
func (p *PickupPool) Update(delta float64) {
	for i := 0; i < p.active; i++ {
		p.slots[i].ElapsedTime += delta
	}
}

// MagnetizeAll flags every live slot
func (p *PickupPool) MagnetizeAll() {
	for i := 0; i < p.active; i++ {
		p.slots[i].IsMagnetized = true
	}
}

// Reset zeroes every slot, live or not
func (p *PickupPool) Reset() {
	clear(p.slots)
	p.active = 0
	p.nextID = 0
}

// XPOrbPool recycles its oldest orb when full
type XPOrbPool struct{ *PickupPool }

// NewXPOrbPool creates the XP orb pool
func NewXPOrbPool(cfg *Config) XPOrbPool {
	return XPOrbPool{NewPickupPool(cfg, PickupXPOrb, cfg.MaxXPOrbs, RecycleOldest)}
}

// SpawnOrb drops an XP orb. Never fails while the pool has capacity.
func (p XPOrbPool) SpawnOrb(x, z float64, value float64, isRare bool) {
	p.Spawn(Pickup{X: x, Z: z, Value: value, IsRare: isRare})
}

// HealGemPool rejects spawns when full
type HealGemPool struct{ *PickupPool }

// NewHealGemPool creates the heal gem pool
func NewHealGemPool(cfg *Config) HealGemPool {
	return HealGemPool{NewPickupPool(cfg, PickupHealGem, cfg.MaxHealGems, RejectWhenFull)}
}

// SpawnGem drops a heal gem. Returns false when the pool is full.
func (p HealGemPool) SpawnGem(x, z, amount float64) bool {
	_, ok := p.Spawn(Pickup{X: x, Z: z, Value: amount})
	return ok
}

// FragmentGemPool recycles its oldest gem when full
type FragmentGemPool struct{ *PickupPool }

// NewFragmentGemPool creates the fragment gem pool
func NewFragmentGemPool(cfg *Config) FragmentGemPool {
	return FragmentGemPool{NewPickupPool(cfg, PickupFragmentGem, cfg.MaxFragmentGems, RecycleOldest)}
}

// SpawnGem drops a fragment gem worth value
func (p FragmentGemPool) SpawnGem(x, z float64, value int) {
	p.Spawn(Pickup{X: x, Z: z, Value: float64(value)})
}

// RareItemPool rejects spawns when full
type RareItemPool struct{ *PickupPool }

// NewRareItemPool creates the rare item pool
func NewRareItemPool(cfg *Config) RareItemPool {
	return RareItemPool{NewPickupPool(cfg, PickupRareItem, cfg.MaxRareItems, RejectWhenFull)}
}

// SpawnItem drops a rare item. Returns false when the pool is full.
func (p RareItemPool) SpawnItem(x, z float64, itemType RareItemType) bool {
	_, ok := p.Spawn(Pickup{X: x, Z: z, ItemType: itemType, IsRare: true})
	return ok
}

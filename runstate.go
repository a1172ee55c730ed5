package main

import "fmt"

// RunState is what survives a system transition
type RunState struct {
	Mode         GameMode
	Ship         ShipClass
	Level        int
	XP           float64
	HP           float64
	MaxHP        float64
	Fragments    int
	Upgrades     map[string]int // permanent shop ranks
	Loadout      []string
	WeaponLevels map[string]int

	DamageMul       float64
	FireRateMul     float64
	Speed           float64
	PickupRadiusMul float64
	CurseBonus      float64
	Luck            float64
}

// SystemState is reset to initial values on every system transition
type SystemState struct {
	SystemNum    int
	SystemTime   float64
	Enemies      int
	BossSpawned  bool
	BossDefeated bool
	Wormhole     Wormhole
}

// RunState captures the run-persistent fields
func (s *Simulation) RunState() RunState {
	p := s.player.Player()
	rs := RunState{
		Mode:            s.run.Mode,
		Ship:            p.Ship,
		Level:           p.Level,
		XP:              p.XP,
		HP:              p.HP,
		MaxHP:           p.MaxHP,
		Fragments:       p.Fragments,
		Upgrades:        make(map[string]int, len(s.Ranks)),
		Loadout:         s.weapons.Loadout(),
		WeaponLevels:    make(map[string]int, len(s.weapons.Slots())),
		DamageMul:       p.DamageMul,
		FireRateMul:     p.FireRateMul,
		Speed:           p.Speed,
		PickupRadiusMul: p.PickupRadiusMul,
		CurseBonus:      p.CurseBonus,
		Luck:            p.Luck,
	}
	for k, v := range s.Ranks {
		rs.Upgrades[k] = v
	}
	for _, w := range s.weapons.Slots() {
		rs.WeaponLevels[w.ID] = w.Level
	}
	return rs
}

// SystemState captures the per-system fields
func (s *Simulation) SystemState() SystemState {
	return SystemState{
		SystemNum:    s.SystemNum,
		SystemTime:   s.SystemTime,
		Enemies:      s.enemies.Count(),
		BossSpawned:  s.boss.Spawned(),
		BossDefeated: s.boss.BossDefeated(),
		Wormhole:     s.Wormhole,
	}
}

// resetSystem returns every per-system field to its initial value
func (s *Simulation) resetSystem() {
	s.SystemTime = 0
	s.Wormhole = Wormhole{}
	s.enemies.Reset()
	s.boss.Reset()
	s.fx.Reset()
	s.projectiles.Reset()
	s.spawner.Reset()
	s.xpOrbs.Reset()
	s.healGems.Reset()
	s.fragments.Reset()
	s.rareItems.Reset()
	s.particles.Reset()
	s.trails.Reset()
	s.weapons.Reset()
	s.player.ResetPosition()
}

// AdvanceSystem moves the run to the next system. Run-persistent fields
// survive; per-system fields are reset.
func (s *Simulation) AdvanceSystem() {
	s.SystemNum++
	s.resetSystem()
	s.emit(SimEvent{Kind: EventSystem, Value: float64(s.SystemNum)})
}

// Snapshot keys
const (
	keyMode         = "run.mode"
	keyShip         = "run.ship"
	keyLevel        = "run.level"
	keyXP           = "run.xp"
	keyHP           = "run.hp"
	keyMaxHP        = "run.max_hp"
	keyFragments    = "run.fragments"
	keyUpgrades     = "run.upgrades"
	keyLoadout      = "run.loadout"
	keyWeaponLevels = "run.weapon_levels"
	keyDamageMul    = "run.damage_mul"
	keyFireRateMul  = "run.fire_rate_mul"
	keySpeed        = "run.speed"
	keyPickupMul    = "run.pickup_radius_mul"
	keyCurse        = "run.curse"
	keyLuck         = "run.luck"
	keyStats        = "run.stats"
	keySystem       = "system.num"
)

// SaveSnapshot returns the run-persistent fields as a flat key/value map.
// Per-system state is not saved; a loaded run starts its system fresh.
func (s *Simulation) SaveSnapshot() map[string]any {
	rs := s.RunState()
	upgrades := make(map[string]any, len(rs.Upgrades))
	for k, v := range rs.Upgrades {
		upgrades[k] = v
	}
	levels := make(map[string]any, len(rs.WeaponLevels))
	for k, v := range rs.WeaponLevels {
		levels[k] = v
	}
	loadout := make([]any, len(rs.Loadout))
	for i, id := range rs.Loadout {
		loadout[i] = id
	}
	return map[string]any{
		keyMode:         int(rs.Mode),
		keyShip:         int(rs.Ship),
		keyLevel:        rs.Level,
		keyXP:           rs.XP,
		keyHP:           rs.HP,
		keyMaxHP:        rs.MaxHP,
		keyFragments:    rs.Fragments,
		keyUpgrades:     upgrades,
		keyLoadout:      loadout,
		keyWeaponLevels: levels,
		keyDamageMul:    rs.DamageMul,
		keyFireRateMul:  rs.FireRateMul,
		keySpeed:        rs.Speed,
		keyPickupMul:    rs.PickupRadiusMul,
		keyCurse:        rs.CurseBonus,
		keyLuck:         rs.Luck,
		keyStats: map[string]any{
			"kills":          s.Stats.Kills,
			"eliteKills":     s.Stats.EliteKills,
			"bossKills":      s.Stats.BossKills,
			"systemsCleared": s.Stats.SystemsCleared,
			"timeAlive":      s.Stats.TimeAlive,
		},
		keySystem: s.SystemNum,
	}
}

// LoadSnapshot restores a saved run into a lobby simulation. Missing keys
// keep their current values. The run resumes at the start of the saved
// system with per-system state reset.
func (s *Simulation) LoadSnapshot(m map[string]any) error {
	if s.Phase != PhaseLobby {
		return fmt.Errorf("load snapshot: run already started")
	}
	if v, ok := numField(m, keyShip); ok {
		s.player.Init(ShipClass(v))
		s.run.Ship = ShipClass(v)
	}
	if v, ok := numField(m, keyMode); ok {
		s.run = DefaultRunConfig(GameMode(v))
		s.run.Ship = s.player.Player().Ship
	}

	p := s.player.Player()
	setInt := func(key string, dst *int) {
		if v, ok := numField(m, key); ok {
			*dst = int(v)
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := numField(m, key); ok {
			*dst = v
		}
	}
	setInt(keyLevel, &p.Level)
	setFloat(keyXP, &p.XP)
	setFloat(keyMaxHP, &p.MaxHP)
	setFloat(keyHP, &p.HP)
	setInt(keyFragments, &p.Fragments)
	setFloat(keyDamageMul, &p.DamageMul)
	setFloat(keyFireRateMul, &p.FireRateMul)
	setFloat(keySpeed, &p.Speed)
	setFloat(keyPickupMul, &p.PickupRadiusMul)
	setFloat(keyCurse, &p.CurseBonus)
	setFloat(keyLuck, &p.Luck)
	setInt(keySystem, &s.SystemNum)
	if s.SystemNum < 1 {
		s.SystemNum = 1
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.XPToNext = s.player.XPForLevel(p.Level)
	if p.HP <= 0 || p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}

	if raw, ok := m[keyUpgrades].(map[string]any); ok {
		for k, v := range raw {
			if n, ok := toFloat(v); ok {
				s.Ranks[k] = int(n)
			}
		}
	}
	if raw, ok := m[keyLoadout].([]any); ok {
		ids := make([]string, 0, len(raw))
		for _, v := range raw {
			if id, ok := v.(string); ok {
				ids = append(ids, id)
			}
		}
		s.weapons.Init(ids)
		s.loadout = ids
	}
	if raw, ok := m[keyWeaponLevels].(map[string]any); ok {
		for id, v := range raw {
			n, ok := toFloat(v)
			if !ok {
				continue
			}
			if w := s.weapons.slot(id); w != nil && n >= 1 {
				w.Level = int(n)
			}
		}
	}
	if raw, ok := m[keyStats].(map[string]any); ok {
		if v, ok := numField(raw, "kills"); ok {
			s.Stats.Kills = int(v)
		}
		if v, ok := numField(raw, "eliteKills"); ok {
			s.Stats.EliteKills = int(v)
		}
		if v, ok := numField(raw, "bossKills"); ok {
			s.Stats.BossKills = int(v)
		}
		if v, ok := numField(raw, "systemsCleared"); ok {
			s.Stats.SystemsCleared = int(v)
		}
		if v, ok := numField(raw, "timeAlive"); ok {
			s.Stats.TimeAlive = v
		}
	}

	s.resetSystem()
	s.Phase = PhasePlaying
	s.needsReset = true
	return nil
}

func numField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// toFloat accepts every numeric type a decoder may produce
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

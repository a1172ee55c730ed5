package main

// AbilityType identifies a ship's active ability
type AbilityType int

const (
	AbilityMissileBarrage AbilityType = 0 // Fighter: homing missile volley
	AbilityShield         AbilityType = 1 // Tank: absorb damage for a few seconds
	AbilityBlink          AbilityType = 2 // Scout: jump forward
	AbilityRepair         AbilityType = 3 // Support: heal over time
)

// Ability cooldowns and durations
const (
	MissileBarrageCooldown = 12.0
	MissileBarrageCount    = 5
	MissileBarrageDamage   = 25.0
	MissileBarrageSpeed    = 35.0
	MissileBarrageLifetime = 3.0
	MissileBarrageTurnRate = 6.0

	ShieldCooldown = 15.0
	ShieldDuration = 3.0
	ShieldAbsorb   = 50.0

	BlinkCooldown = 8.0
	BlinkDistance = 10.0

	RepairCooldown = 18.0
	RepairDuration = 5.0
	RepairRate     = 6.0 // HP/s
)

// Ability tracks the state of the player's ability
type Ability struct {
	Type     AbilityType
	Cooldown float64 // remaining cooldown
	Active   bool    // currently active
	Timer    float64 // remaining active duration
	ShieldHP float64 // remaining shield HP (Tank)
}

// AbilityForClass returns the default ability for a class
func AbilityForClass(class ShipClass) Ability {
	switch class {
	case ClassTank:
		return Ability{Type: AbilityShield}
	case ClassScout:
		return Ability{Type: AbilityBlink}
	case ClassSupport:
		return Ability{Type: AbilityRepair}
	default:
		return Ability{Type: AbilityMissileBarrage}
	}
}

// CanActivate returns true if the ability is ready
func (a *Ability) CanActivate() bool {
	return a.Cooldown <= 0 && !a.Active
}

// Activate starts the ability and returns true on success. Instant effects
// (missiles, blink) are applied by the simulation.
func (a *Ability) Activate() bool {
	if !a.CanActivate() {
		return false
	}
	switch a.Type {
	case AbilityMissileBarrage:
		a.Cooldown = MissileBarrageCooldown
	case AbilityShield:
		a.Active = true
		a.Timer = ShieldDuration
		a.ShieldHP = ShieldAbsorb
		a.Cooldown = ShieldCooldown
	case AbilityBlink:
		a.Cooldown = BlinkCooldown
	case AbilityRepair:
		a.Active = true
		a.Timer = RepairDuration
		a.Cooldown = RepairCooldown
	}
	return true
}

// Update ticks the ability cooldowns and active timers
func (a *Ability) Update(dt float64) {
	if a.Cooldown > 0 {
		a.Cooldown -= dt
		if a.Cooldown < 0 {
			a.Cooldown = 0
		}
	}
	if a.Active {
		a.Timer -= dt
		if a.Timer <= 0 {
			a.Active = false
			a.Timer = 0
			a.ShieldHP = 0
		}
	}
}

// AbsorbDamage applies shield damage absorption, returns remaining damage
func (a *Ability) AbsorbDamage(dmg float64) float64 {
	if !a.Active || a.Type != AbilityShield || a.ShieldHP <= 0 {
		return dmg
	}
	if dmg <= a.ShieldHP {
		a.ShieldHP -= dmg
		return 0
	}
	remaining := dmg - a.ShieldHP
	a.ShieldHP = 0
	a.Active = false
	a.Timer = 0
	return remaining
}

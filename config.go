package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 20 // state frames per second
	BroadcastEvery = TickRate / BroadcastRate
)

// Config is the tuning table consumed read-only by every simulation system.
// Values are world units, seconds and per-second rates.
type Config struct {
	// World
	PlayAreaBound      float64 `yaml:"play_area_bound"`
	ProjectileBound    float64 `yaml:"projectile_bound"`
	MaxFrameDelta      float64 `yaml:"max_frame_delta"`
	CollisionCellSize  float64 `yaml:"collision_cell_size"`
	SeparationCellSize float64 `yaml:"separation_cell_size"`
	SystemTimer        float64 `yaml:"system_timer"`
	WormholeRadius     float64 `yaml:"wormhole_radius"`

	// Player
	PlayerSpeed           float64 `yaml:"player_speed"`
	PlayerMaxHP           float64 `yaml:"player_max_hp"`
	PlayerRadius          float64 `yaml:"player_radius"`
	PlayerInvulnTime      float64 `yaml:"player_invuln_time"`
	ContactDamageCooldown float64 `yaml:"contact_damage_cooldown"`
	LevelXPBase           float64 `yaml:"level_xp_base"`
	LevelXPGrowth         float64 `yaml:"level_xp_growth"`
	UpgradeOfferCount     int     `yaml:"upgrade_offer_count"`
	MaxWeapons            int     `yaml:"max_weapons"`

	// Separation
	EnemySeparationRadius     float64 `yaml:"enemy_separation_radius"`
	BossSeparationRadius      float64 `yaml:"boss_separation_radius"`
	SeparationForce           float64 `yaml:"separation_force"`
	MaxSeparationDisplacement float64 `yaml:"max_separation_displacement"`

	// Spawning
	SpawnIntervalBase      float64 `yaml:"spawn_interval_base"`
	SpawnIntervalMin       float64 `yaml:"spawn_interval_min"`
	SpawnBatchBase         int     `yaml:"spawn_batch_base"`
	SpawnBatchRampInterval float64 `yaml:"spawn_batch_ramp_interval"`
	SpawnDistanceMin       float64 `yaml:"spawn_distance_min"`
	SpawnDistanceMax       float64 `yaml:"spawn_distance_max"`
	SniperDistanceMin      float64 `yaml:"sniper_distance_min"`
	SniperDistanceMax      float64 `yaml:"sniper_distance_max"`
	SweepGroupMin          int     `yaml:"sweep_group_min"`
	SweepGroupMax          int     `yaml:"sweep_group_max"`
	SweepSpacing           float64 `yaml:"sweep_spacing"`
	MaxEnemies             int     `yaml:"max_enemies"`

	// Enemy behaviours
	HitFlashDuration       float64 `yaml:"hit_flash_duration"`
	SweepDespawnTime       float64 `yaml:"sweep_despawn_time"`
	ShockwaveInterval      float64 `yaml:"shockwave_interval"`
	ShockwaveRadius        float64 `yaml:"shockwave_radius"`
	ShockwaveDamage        float64 `yaml:"shockwave_damage"`
	ShockwaveDuration      float64 `yaml:"shockwave_duration"`
	SniperRange            float64 `yaml:"sniper_range"`
	SniperAttackInterval   float64 `yaml:"sniper_attack_interval"`
	SniperTelegraphTime    float64 `yaml:"sniper_telegraph_time"`
	SniperProjectileSpeed  float64 `yaml:"sniper_projectile_speed"`
	SniperProjectileDamage float64 `yaml:"sniper_projectile_damage"`
	EnemyProjectileRadius  float64 `yaml:"enemy_projectile_radius"`
	EnemyProjectileLife    float64 `yaml:"enemy_projectile_life"`
	TeleportInterval       float64 `yaml:"teleport_interval"`
	TeleportDistance       float64 `yaml:"teleport_distance"`
	KnockbackDecay         float64 `yaml:"knockback_decay"`
	BossKnockbackResist    float64 `yaml:"boss_knockback_resist"`

	// Boss
	BossBaseHP           float64 `yaml:"boss_base_hp"`
	BossRadius           float64 `yaml:"boss_radius"`
	BossSpeed            float64 `yaml:"boss_speed"`
	BossContactDamage    float64 `yaml:"boss_contact_damage"`
	BossProjectileDamage float64 `yaml:"boss_projectile_damage"`
	BossProjectileSpeed  float64 `yaml:"boss_projectile_speed"`
	BossAttackInterval   float64 `yaml:"boss_attack_interval"`
	BossSpawnDistance    float64 `yaml:"boss_spawn_distance"`
	BossDefeatDuration   float64 `yaml:"boss_defeat_duration"`
	BossDefeatExplosions int     `yaml:"boss_defeat_explosions"`

	// System scaling, per system beyond the first
	SystemHPScale     float64 `yaml:"system_hp_scale"`
	SystemDamageScale float64 `yaml:"system_damage_scale"`
	SystemSpeedScale  float64 `yaml:"system_speed_scale"`
	SystemXPScale     float64 `yaml:"system_xp_scale"`

	// Pools
	MaxProjectiles      int `yaml:"max_projectiles"`
	MaxEnemyProjectiles int `yaml:"max_enemy_projectiles"`
	MaxXPOrbs           int `yaml:"max_xp_orbs"`
	MaxHealGems         int `yaml:"max_heal_gems"`
	MaxFragmentGems     int `yaml:"max_fragment_gems"`
	MaxRareItems        int `yaml:"max_rare_items"`
	MaxParticles        int `yaml:"max_particles"`
	MaxTrailParticles   int `yaml:"max_trail_particles"`

	// Magnetization and pickup
	XPMagnetRadius      float64 `yaml:"xp_magnet_radius"`
	MagnetSpeed         float64 `yaml:"magnet_speed"`
	MagnetMinSpeed      float64 `yaml:"magnet_min_speed"`
	MagnetAccelCurve    float64 `yaml:"magnet_accel_curve"`
	MagnetEpsilon       float64 `yaml:"magnet_epsilon"`
	PickupCollectRadius float64 `yaml:"pickup_collect_radius"`
	PickupRadius        float64 `yaml:"pickup_radius"`

	// Loot
	RareXPChance        float64 `yaml:"rare_xp_chance"`
	RareXPGemMultiplier float64 `yaml:"rare_xp_gem_multiplier"`
	HealGemChance       float64 `yaml:"heal_gem_chance"`
	HealGemAmount       float64 `yaml:"heal_gem_amount"`
	FragmentGemChance   float64 `yaml:"fragment_gem_chance"`
	FragmentGemValue    int     `yaml:"fragment_gem_value"`
	LootChanceCap       float64 `yaml:"loot_chance_cap"`
	LootScatterRadius   float64 `yaml:"loot_scatter_radius"`
	LootScatterJitter   float64 `yaml:"loot_scatter_jitter"`
	RareItemChance      float64 `yaml:"rare_item_chance"`

	// Particles
	DeathParticleCount int     `yaml:"death_particle_count"`
	ParticleSpeed      float64 `yaml:"particle_speed"`
	ParticleLifetime   float64 `yaml:"particle_lifetime"`
	TrailLifetime      float64 `yaml:"trail_lifetime"`
	TrailEmitInterval  float64 `yaml:"trail_emit_interval"`
}

// DefaultConfig returns the shipped tuning table
func DefaultConfig() Config {
	return Config{
		PlayAreaBound:      150,
		ProjectileBound:    200,
		MaxFrameDelta:      0.1,
		CollisionCellSize:  4,
		SeparationCellSize: 4,
		SystemTimer:        600,
		WormholeRadius:     3,

		PlayerSpeed:           12,
		PlayerMaxHP:           100,
		PlayerRadius:          1.0,
		PlayerInvulnTime:      0.5,
		ContactDamageCooldown: 0.5,
		LevelXPBase:           10,
		LevelXPGrowth:         1.25,
		UpgradeOfferCount:     3,
		MaxWeapons:            4,

		EnemySeparationRadius:     2.0,
		BossSeparationRadius:      6.0,
		SeparationForce:           8,
		MaxSeparationDisplacement: 0.5,

		SpawnIntervalBase:      2.0,
		SpawnIntervalMin:       0.25,
		SpawnBatchBase:         2,
		SpawnBatchRampInterval: 30,
		SpawnDistanceMin:       30,
		SpawnDistanceMax:       45,
		SniperDistanceMin:      70,
		SniperDistanceMax:      90,
		SweepGroupMin:          3,
		SweepGroupMax:          5,
		SweepSpacing:           2.5,
		MaxEnemies:             100,

		HitFlashDuration:       0.1,
		SweepDespawnTime:       12,
		ShockwaveInterval:      4,
		ShockwaveRadius:        6,
		ShockwaveDamage:        10,
		ShockwaveDuration:      0.4,
		SniperRange:            40,
		SniperAttackInterval:   3,
		SniperTelegraphTime:    0.8,
		SniperProjectileSpeed:  35,
		SniperProjectileDamage: 10,
		EnemyProjectileRadius:  0.5,
		EnemyProjectileLife:    4,
		TeleportInterval:       4,
		TeleportDistance:       8,
		KnockbackDecay:         8,
		BossKnockbackResist:    0.75,

		BossBaseHP:           2000,
		BossRadius:           4,
		BossSpeed:            4,
		BossContactDamage:    25,
		BossProjectileDamage: 12,
		BossProjectileSpeed:  25,
		BossAttackInterval:   2.5,
		BossSpawnDistance:    35,
		BossDefeatDuration:   3,
		BossDefeatExplosions: 8,

		SystemHPScale:     0.5,
		SystemDamageScale: 0.25,
		SystemSpeedScale:  0.05,
		SystemXPScale:     0.5,

		MaxProjectiles:      400,
		MaxEnemyProjectiles: 200,
		MaxXPOrbs:           300,
		MaxHealGems:         20,
		MaxFragmentGems:     100,
		MaxRareItems:        10,
		MaxParticles:        500,
		MaxTrailParticles:   400,

		XPMagnetRadius:      8,
		MagnetSpeed:         40,
		MagnetMinSpeed:      4,
		MagnetAccelCurve:    2,
		MagnetEpsilon:       0.01,
		PickupCollectRadius: 1.5,
		PickupRadius:        0.4,

		RareXPChance:        0.02,
		RareXPGemMultiplier: 5,
		HealGemChance:       0.02,
		HealGemAmount:       15,
		FragmentGemChance:   0.05,
		FragmentGemValue:    1,
		LootChanceCap:       1.0,
		LootScatterRadius:   1.2,
		LootScatterJitter:   0.3,
		RareItemChance:      0.005,

		DeathParticleCount: 8,
		ParticleSpeed:      10,
		ParticleLifetime:   0.6,
		TrailLifetime:      0.25,
		TrailEmitInterval:  0.05,
	}
}

// LoadConfig overlays a YAML file on the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate clamps values that would break the simulation back to defaults
func (c *Config) Validate() {
	def := DefaultConfig()
	fix := func(name string, v *float64, fallback float64) {
		if *v <= 0 {
			log.Printf("config: %s must be positive, using %v", name, fallback)
			*v = fallback
		}
	}
	fix("max_frame_delta", &c.MaxFrameDelta, def.MaxFrameDelta)
	fix("collision_cell_size", &c.CollisionCellSize, def.CollisionCellSize)
	fix("separation_cell_size", &c.SeparationCellSize, def.SeparationCellSize)
	fix("system_timer", &c.SystemTimer, def.SystemTimer)
	fix("spawn_interval_base", &c.SpawnIntervalBase, def.SpawnIntervalBase)
	fix("spawn_interval_min", &c.SpawnIntervalMin, def.SpawnIntervalMin)
	fix("spawn_batch_ramp_interval", &c.SpawnBatchRampInterval, def.SpawnBatchRampInterval)
	fix("play_area_bound", &c.PlayAreaBound, def.PlayAreaBound)
	fix("projectile_bound", &c.ProjectileBound, def.ProjectileBound)

	// Cell coordinates are packed into 16 bits each.
	if c.PlayAreaBound/c.CollisionCellSize > 32000 {
		log.Printf("config: collision_cell_size too small for play area, using %v", def.CollisionCellSize)
		c.CollisionCellSize = def.CollisionCellSize
	}
	if c.PlayAreaBound/c.SeparationCellSize > 32000 {
		log.Printf("config: separation_cell_size too small for play area, using %v", def.SeparationCellSize)
		c.SeparationCellSize = def.SeparationCellSize
	}
	if c.SpawnDistanceMax < c.SpawnDistanceMin {
		c.SpawnDistanceMax = c.SpawnDistanceMin
	}
	if c.SniperDistanceMax < c.SniperDistanceMin {
		c.SniperDistanceMax = c.SniperDistanceMin
	}
	if c.SweepGroupMin < 1 {
		c.SweepGroupMin = def.SweepGroupMin
	}
	if c.SweepGroupMax < c.SweepGroupMin {
		c.SweepGroupMax = c.SweepGroupMin
	}
	if c.SpawnBatchBase < 1 {
		c.SpawnBatchBase = 1
	}
	if c.MaxEnemies < 1 {
		c.MaxEnemies = def.MaxEnemies
	}
	if c.LootChanceCap <= 0 || c.LootChanceCap > 1 {
		c.LootChanceCap = 1
	}
}

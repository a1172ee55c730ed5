package main

import "testing"

func newPlayingSim(t *testing.T, cfg *Config) *Simulation {
	t.Helper()
	s := NewSimulation(cfg, DefaultDefinitions(), DefaultRunConfig(ModeStandard))
	s.Start(nil)
	if s.Phase != PhasePlaying {
		t.Fatalf("expected playing, got %s", s.Phase)
	}
	return s
}

func hasEvent(evs []SimEvent, kind string) bool {
	for _, ev := range evs {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestContactDamageFromLiveEnemy(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 0.5})

	p := s.player.Player()
	pc := s.registerColliders(p)
	s.resolveProjectileHits()
	s.resolvePlayerHits(p, pc)

	if p.HP != cfg.PlayerMaxHP-5 {
		t.Errorf("expected 5 contact damage, HP %v", p.HP)
	}
	if s.Stats.DamageTaken != 5 {
		t.Errorf("expected 5 damage taken, got %v", s.Stats.DamageTaken)
	}
}

func TestKilledEnemyDealsNoContactDamage(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 0.5})
	s.projectiles.Spawn(Projectile{X: 0.5, Radius: 0.4, Damage: 100, Lifetime: 1, Category: CatProjectile})

	p := s.player.Player()
	pc := s.registerColliders(p)
	s.resolveProjectileHits()
	s.resolvePlayerHits(p, pc)

	if s.enemies.Count() != 0 {
		t.Fatalf("drone should be dead, %d left", s.enemies.Count())
	}
	if p.HP != cfg.PlayerMaxHP {
		t.Errorf("a drone killed this frame dealt contact damage, HP %v", p.HP)
	}
	if s.Stats.Kills != 1 || p.Kills != 1 {
		t.Errorf("expected one kill, stats %d player %d", s.Stats.Kills, p.Kills)
	}
	if !hasEvent(s.Events(), EventKill) {
		t.Error("expected a kill event")
	}
	if s.xpOrbs.ActiveCount() != 1 {
		t.Errorf("kill should drop one xp orb, got %d", s.xpOrbs.ActiveCount())
	}
}

func TestProjectileSweptHitsThinTarget(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.X = 50
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 0, Z: -2.5})
	s.projectiles.Spawn(Projectile{Radius: 1.5, Damage: 20, Lifetime: 1, Category: CatProjectile})
	shot := &s.projectiles.Items()[0]
	shot.Z = -5

	s.registerColliders(p)
	s.resolveProjectileHits()

	if s.enemies.Count() != 0 {
		t.Error("projectile should hit the enemy it jumped over")
	}
	if shot.Active {
		t.Error("projectile should be consumed by its first hit")
	}
}

func TestProjectileSweptHitsOnShortMove(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.X = 50
	// both endpoints clear the drone by a hair, the midpoint does not
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 0.375, Z: 1.455})
	s.projectiles.Spawn(Projectile{Radius: 0.75, Damage: 20, Lifetime: 1, Category: CatProjectile})
	shot := &s.projectiles.Items()[0]
	shot.X = 0.75

	s.registerColliders(p)
	s.resolveProjectileHits()

	if s.enemies.Count() != 0 {
		t.Error("a move shorter than the projectile radius should still sweep")
	}
	if shot.Active {
		t.Error("projectile should be consumed by the swept hit")
	}
}

func TestProjectileHitsOnlyOnce(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.X = 50
	s.enemies.Spawn(SpawnInstruction{TypeID: "t4_juggernaut", X: 0})
	s.enemies.Spawn(SpawnInstruction{TypeID: "t4_juggernaut", X: 0.5})
	s.projectiles.Spawn(Projectile{X: 0.2, Radius: 0.4, Damage: 10, Lifetime: 1, Category: CatProjectile})

	s.registerColliders(p)
	s.resolveProjectileHits()

	total := 0.0
	for _, e := range s.enemies.Enemies() {
		total += e.MaxHP - e.HP
	}
	if total != 10 {
		t.Errorf("one projectile should deal its damage once, dealt %v", total)
	}
}

func TestEnemyShotHitsPlayer(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.fx.FireEnemyShot(0.5, 0, 0, 0, 12)

	p := s.player.Player()
	pc := s.registerColliders(p)
	s.resolvePlayerHits(p, pc)

	if p.HP != cfg.PlayerMaxHP-12 {
		t.Errorf("expected 12 damage, HP %v", p.HP)
	}
	if s.fx.Shots.Items()[0].Active {
		t.Error("enemy shot should be consumed")
	}
}

func TestBossTakesProjectileDamage(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.X = 50
	s.boss.Spawn(1, 0, 0, nil)
	s.projectiles.Spawn(Projectile{X: 1, Radius: 0.4, Damage: 25, Lifetime: 1, Category: CatProjectile})

	s.registerColliders(p)
	s.resolveProjectileHits()

	b := s.boss.Boss()
	if b.HP != b.MaxHP-25 {
		t.Errorf("expected 25 boss damage, HP %v/%v", b.HP, b.MaxHP)
	}
}

func TestBossKillDropsLoot(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.X = 50
	s.boss.Spawn(1, 0, 0, nil)
	s.boss.Boss().HP = 1
	s.projectiles.Spawn(Projectile{X: 1, Radius: 0.4, Damage: 25, Lifetime: 1, Category: CatProjectile})

	s.registerColliders(p)
	s.resolveProjectileHits()

	if !s.boss.BossDefeated() || s.Stats.BossKills != 1 {
		t.Fatal("boss should be defeated")
	}
	if !hasEvent(s.Events(), EventBossDefeated) {
		t.Error("expected a boss defeated event")
	}
	if s.xpOrbs.ActiveCount() != 8 || s.fragments.ActiveCount() != 8 {
		t.Errorf("expected a ring of 8 orbs and gems, got %d and %d", s.xpOrbs.ActiveCount(), s.fragments.ActiveCount())
	}
	// damage dealt counts only the HP the boss had left
	if s.Stats.DamageDealt != 1 {
		t.Errorf("expected 1 damage dealt, got %v", s.Stats.DamageDealt)
	}
}

func TestShockwaveHitsOnce(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.fx.EmitShockwave(3, 0, 10, 7)
	s.fx.Shockwaves[0].Radius = 3

	p := s.player.Player()
	pc := s.registerColliders(p)
	s.resolvePlayerHits(p, pc)
	if p.HP != cfg.PlayerMaxHP-7 {
		t.Fatalf("expected shockwave damage, HP %v", p.HP)
	}
	p.InvulnTimer = 0
	s.resolvePlayerHits(p, pc)
	if p.HP != cfg.PlayerMaxHP-7 {
		t.Errorf("shockwave should hit the player once, HP %v", p.HP)
	}
}

func TestRareBombClearsEnemies(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 20})
	s.enemies.Spawn(SpawnInstruction{TypeID: "t2_pulsar", X: -20})
	s.enemies.Spawn(SpawnInstruction{TypeID: "t4_juggernaut", X: 30})

	s.applyRareItem(Pickup{ItemType: RareBomb})
	if s.enemies.Count() != 1 {
		t.Errorf("bomb should leave only the juggernaut, got %d", s.enemies.Count())
	}
	if s.Stats.Kills != 2 || s.Stats.RareItems != 1 {
		t.Errorf("unexpected stats %+v", s.Stats)
	}
}

func TestRareRepairAndMagnet(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	p := s.player.Player()
	p.HP = 10
	s.applyRareItem(Pickup{ItemType: RareRepair})
	if p.HP != p.MaxHP {
		t.Errorf("repair should restore full HP, got %v", p.HP)
	}

	s.xpOrbs.SpawnOrb(100, 100, 1, false)
	s.applyRareItem(Pickup{ItemType: RareMagnet})
	if !s.xpOrbs.Slots()[0].IsMagnetized {
		t.Error("magnet should flag every orb")
	}
}

package main

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestSimulationIdleOutsidePlaying(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSimulation(&cfg, DefaultDefinitions(), DefaultRunConfig(ModeStandard))
	s.Tick(1.0/60, Input{MoveX: 1})
	if s.TickCount() != 0 || s.player.Player().X != 0 {
		t.Error("lobby simulation should not tick")
	}

	s.Start(nil)
	s.SetPaused(true)
	s.Tick(1.0/60, Input{MoveX: 1})
	if s.TickCount() != 0 {
		t.Error("paused simulation should not tick")
	}
	s.SetPaused(false)
	s.Tick(1.0/60, Input{MoveX: 1})
	if s.TickCount() != 1 || s.player.Player().X <= 0 {
		t.Error("resumed simulation should tick")
	}
}

func TestSimulationClampsDelta(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.Tick(5, Input{MoveX: 1})
	want := cfg.PlayerSpeed * cfg.MaxFrameDelta
	if got := s.player.Player().X; !near(got, want) {
		t.Errorf("expected movement capped at %v, got %v", want, got)
	}
	s.Tick(0, Input{MoveX: 1})
	if s.TickCount() != 1 {
		t.Error("zero delta should be ignored")
	}
}

func TestSimulationFirstTickEquipsLoadout(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSimulation(&cfg, DefaultDefinitions(), RunConfig{Mode: ModeStandard, FinalSystem: 4, Ship: ClassSupport})
	s.Start(map[string]int{"armory": 1})
	s.Tick(1.0/60, Input{})
	got := s.weapons.Loadout()
	if len(got) != 2 || got[0] != "seeker" || got[1] != "nova" {
		t.Errorf("expected seeker and nova, got %v", got)
	}
}

func TestSimulationSpawnsOverTime(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	for i := 0; i < 60*10; i++ {
		s.Tick(1.0/60, Input{})
		if s.Phase != PhasePlaying {
			break
		}
	}
	if s.enemies.Count() == 0 && s.Stats.Kills == 0 {
		t.Error("expected enemies to spawn within ten seconds")
	}
	if s.SystemTime <= 0 {
		t.Error("system clock should advance")
	}
}

func TestSimulationGameOver(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.player.Player().HP = 1
	s.enemies.Spawn(SpawnInstruction{TypeID: "t4_juggernaut", X: 0.5})
	s.Tick(1.0/60, Input{})
	if s.Phase != PhaseGameOver {
		t.Fatalf("expected game over, got %s", s.Phase)
	}
	if !hasEvent(s.Events(), EventGameOver) {
		t.Error("expected a game over event")
	}
	n := s.TickCount()
	s.Tick(1.0/60, Input{})
	if s.TickCount() != n {
		t.Error("finished run should not tick")
	}
}

func TestSimulationLevelUpFlow(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.xpOrbs.SpawnOrb(0, 0, s.player.XPForLevel(1), false)
	s.Tick(1.0/60, Input{})

	if s.Phase != PhaseLevelUp {
		t.Fatalf("expected level up, got %s", s.Phase)
	}
	if len(s.Offers) != cfg.UpgradeOfferCount {
		t.Fatalf("expected %d offers, got %d", cfg.UpgradeOfferCount, len(s.Offers))
	}
	if !hasEvent(s.Events(), EventLevelUp) {
		t.Error("expected a level up event")
	}
	n := s.TickCount()
	s.Tick(1.0/60, Input{})
	if s.TickCount() != n {
		t.Error("simulation should wait for the upgrade pick")
	}

	if err := s.ChooseUpgrade(len(s.Offers)); err == nil {
		t.Error("out-of-range pick should fail")
	}
	if err := s.ChooseUpgrade(0); err != nil {
		t.Fatalf("ChooseUpgrade: %v", err)
	}
	if s.Phase != PhasePlaying || s.Offers != nil {
		t.Errorf("expected playing with no offers, got %s %v", s.Phase, s.Offers)
	}
	if err := s.ChooseUpgrade(0); err == nil {
		t.Error("pick outside level up should fail")
	}
}

func TestSimulationBossToWormhole(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BossDefeatDuration = 0.5
	s := newPlayingSim(t, &cfg)
	s.SystemTime = cfg.SystemTimer
	s.Tick(1.0/60, Input{})
	if !s.boss.Alive() || !hasEvent(s.Events(), EventBossSpawn) {
		t.Fatal("boss should spawn when the system timer runs out")
	}

	s.boss.Damage(s.boss.Boss().MaxHP)
	s.onBossDefeated()
	for i := 0; i < 60 && !s.Wormhole.Active; i++ {
		s.Tick(1.0/60, Input{})
	}
	if !s.Wormhole.Active {
		t.Fatal("wormhole should open after the defeat timeline")
	}
	if s.Stats.SystemsCleared != 1 {
		t.Errorf("expected one system cleared, got %d", s.Stats.SystemsCleared)
	}

	spawned := s.spawner.ElapsedTime()
	s.Tick(1.0/60, Input{})
	if s.spawner.ElapsedTime() != spawned {
		t.Error("spawning should stop once the boss is defeated")
	}

	p := s.player.Player()
	p.X, p.Z = s.Wormhole.X, s.Wormhole.Z
	s.Tick(1.0/60, Input{})
	if s.SystemNum != 2 {
		t.Fatalf("entering the wormhole should advance to system 2, at %d", s.SystemNum)
	}
	if !hasEvent(s.Events(), EventSystem) {
		t.Error("expected a system event")
	}
}

func TestSimulationVictoryOnFinalSystem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BossDefeatDuration = 0.1
	s := NewSimulation(&cfg, DefaultDefinitions(), RunConfig{Mode: ModeStandard, FinalSystem: 1})
	s.Start(nil)
	s.boss.Spawn(1, 30, 0, nil)
	s.boss.Damage(s.boss.Boss().MaxHP)
	for i := 0; i < 30 && s.Phase == PhasePlaying; i++ {
		s.Tick(1.0/60, Input{})
	}
	if s.Phase != PhaseVictory {
		t.Fatalf("expected victory, got %s", s.Phase)
	}
	if !hasEvent(s.Events(), EventVictory) {
		t.Error("expected a victory event")
	}
	if s.Wormhole.Active {
		t.Error("the final system should not open a wormhole")
	}
}

func TestAdvanceSystemResetsPerSystemState(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.Tick(1.0/60, Input{})
	p := s.player.Player()
	p.Level = 4
	p.Fragments = 9
	p.X, p.Z = 20, -10
	s.SystemTime = 300
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone"})
	s.xpOrbs.SpawnOrb(5, 5, 1, false)
	s.boss.Spawn(1, 0, 0, nil)
	s.Wormhole = Wormhole{Active: true, X: 1, Z: 1, Radius: 3}
	loadout := s.weapons.Loadout()

	s.AdvanceSystem()

	st := s.SystemState()
	if st.SystemNum != 2 || st.SystemTime != 0 || st.Enemies != 0 || st.BossSpawned || st.BossDefeated || st.Wormhole.Active {
		t.Errorf("per-system state not reset: %+v", st)
	}
	if s.xpOrbs.ActiveCount() != 0 {
		t.Error("pickups should be cleared")
	}
	if p.X != 0 || p.Z != 0 {
		t.Errorf("player should return to the origin, at (%v,%v)", p.X, p.Z)
	}
	rs := s.RunState()
	if rs.Level != 4 || rs.Fragments != 9 || len(rs.Loadout) != len(loadout) {
		t.Errorf("run state should survive: %+v", rs)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	defs := DefaultDefinitions()
	src := NewSimulation(&cfg, defs, RunConfig{Mode: ModeStandard, FinalSystem: 4, Ship: ClassScout})
	src.Start(map[string]int{"hull": 2})
	src.Tick(1.0/60, Input{})
	p := src.player.Player()
	p.Level = 6
	p.XP = 3
	p.HP = 40
	p.Fragments = 17
	p.DamageMul = 1.3
	p.CurseBonus = 0.15
	src.weapons.Add("nova")
	src.weapons.LevelUp("nova")
	src.SystemNum = 3
	src.Stats.Kills = 120
	src.Stats.BossKills = 2

	// go through the same encoding the database uses
	data, err := msgpack.Marshal(src.SaveSnapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := NewSimulation(&cfg, defs, DefaultRunConfig(ModeStandard))
	if err := dst.LoadSnapshot(decoded); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	q := dst.player.Player()
	if q.Ship != ClassScout || q.Level != 6 || q.XP != 3 || q.HP != 40 || q.Fragments != 17 {
		t.Errorf("player not restored: %+v", q)
	}
	if q.MaxHP != p.MaxHP || !near(q.DamageMul, 1.3) || !near(q.CurseBonus, 0.15) {
		t.Errorf("modifiers not restored: max %v dmg %v curse %v", q.MaxHP, q.DamageMul, q.CurseBonus)
	}
	if dst.SystemNum != 3 || dst.Stats.Kills != 120 || dst.Stats.BossKills != 2 {
		t.Errorf("progress not restored: system %d stats %+v", dst.SystemNum, dst.Stats)
	}
	if dst.Ranks["hull"] != 2 {
		t.Errorf("ranks not restored: %v", dst.Ranks)
	}
	levels := dst.RunState().WeaponLevels
	if levels["nova"] != 2 || levels["blaster"] != 1 {
		t.Errorf("weapon levels not restored: %v", levels)
	}
	if dst.Phase != PhasePlaying {
		t.Errorf("loaded run should be playing, got %s", dst.Phase)
	}
	if err := dst.LoadSnapshot(decoded); err == nil {
		t.Error("loading into a started run should fail")
	}
}

func TestSnapshotSharesNoMemory(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 20})
	s.emit(SimEvent{Kind: EventKill})

	gs := s.Snapshot()
	if len(gs.Enemies) != 1 || len(gs.Events) != 1 || gs.Phase != "playing" {
		t.Fatalf("unexpected snapshot %+v", gs)
	}
	s.ClearEvents()
	s.enemies.Reset()
	if len(gs.Events) != 1 || gs.Events[0].Kind != EventKill {
		t.Error("snapshot events changed with the simulation")
	}
	if gs.Boss != nil || gs.Wormhole != nil {
		t.Error("no boss or wormhole expected")
	}
}

func TestSystemScalingUsesOwnXPScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SystemHPScale = 0.5
	cfg.SystemXPScale = 2
	s := newPlayingSim(t, &cfg)
	if s.systemScaling() != nil {
		t.Error("the first system should not scale")
	}
	s.SystemNum = 3
	sc := s.systemScaling()
	if sc == nil {
		t.Fatal("expected scaling beyond the first system")
	}
	if !near(sc.HP, 2) || !near(sc.XP, 5) {
		t.Errorf("expected hp 2 and xp 5, got %+v", *sc)
	}
}

func TestSimulationLuckAppliesToSameTickKills(t *testing.T) {
	cfg := DefaultConfig()
	s := newPlayingSim(t, &cfg)
	s.Tick(1.0/60, Input{})
	p := s.player.Player()
	// luck changed since the last tick; the kill below must already see it
	p.Luck = 1
	s.enemies.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 20})
	s.projectiles.Spawn(Projectile{X: 20, Radius: 0.5, Damage: 100, Lifetime: 1, Category: CatProjectile})

	s.Tick(1.0/60, Input{})

	orbs := s.xpOrbs.Slots()
	if len(orbs) == 0 {
		t.Fatal("expected the kill to drop an xp orb")
	}
	for _, o := range orbs {
		if !o.IsRare {
			t.Errorf("full luck should make every orb rare, got %+v", o)
		}
	}
}

package main

import (
	"math"
	"testing"
)

func TestPurchaseCost(t *testing.T) {
	cost, err := PurchaseCost("hull", nil)
	if err != nil || cost != 20 {
		t.Errorf("first hull rank: got %d, %v", cost, err)
	}
	cost, err = PurchaseCost("hull", map[string]int{"hull": 2})
	if err != nil || cost != 60 {
		t.Errorf("third hull rank: got %d, %v", cost, err)
	}
	if _, err := PurchaseCost("armory", map[string]int{"armory": 1}); err == nil {
		t.Error("expected an error past max rank")
	}
	if _, err := PurchaseCost("nope", nil); err == nil {
		t.Error("expected an error for an unknown item")
	}
}

func TestStoreCatalogMap(t *testing.T) {
	if len(StoreCatalogMap) != len(StoreCatalog) {
		t.Fatalf("catalog map has %d entries, catalog %d", len(StoreCatalogMap), len(StoreCatalog))
	}
	for _, it := range StoreCatalog {
		if it.MaxRank < 1 || it.Price <= 0 {
			t.Errorf("%s: bad rank or price", it.ID)
		}
	}
}

func TestApplyPermanentUpgrades(t *testing.T) {
	cfg := DefaultConfig()
	ps := NewPlayerStore(&cfg)
	extra := ApplyPermanentUpgrades(map[string]int{
		"hull":    2,
		"caliber": 9, // clamped to max rank
		"armory":  1,
		"unknown": 3,
	}, ps)

	p := ps.Player()
	if p.MaxHP != cfg.PlayerMaxHP+20 || p.HP != p.MaxHP {
		t.Errorf("expected +20 hp, got %v/%v", p.HP, p.MaxHP)
	}
	if math.Abs(p.DamageMul-1.25) > 1e-9 {
		t.Errorf("expected damage x1.25, got %v", p.DamageMul)
	}
	if len(extra) != 1 || extra[0] != "nova" {
		t.Errorf("armory should grant nova, got %v", extra)
	}
}

func TestFragmentsPerRun(t *testing.T) {
	if got := FragmentsPerRun(2, 1, false); got != 35 {
		t.Errorf("expected 35, got %d", got)
	}
	if got := FragmentsPerRun(3, 3, true); got != 125 {
		t.Errorf("expected 125, got %d", got)
	}
}

func TestRollUpgradeOffers(t *testing.T) {
	cfg := DefaultConfig()
	defs := DefaultDefinitions()
	ws := NewWeaponStore(&cfg, defs)
	ws.Init([]string{"blaster"})

	offers := RollUpgradeOffers(NewRand(5), defs, ws, 3)
	if len(offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(offers))
	}
	seen := make(map[UpgradeOffer]bool)
	for _, o := range offers {
		if seen[o] {
			t.Errorf("duplicate offer %+v", o)
		}
		seen[o] = true
		if o.Kind == UpgradeNewWeapon && ws.Has(o.WeaponID) {
			t.Errorf("offered an equipped weapon %s", o.WeaponID)
		}
	}
	if got := RollUpgradeOffers(NewRand(5), defs, ws, 100); len(got) >= 100 {
		t.Errorf("offers should be limited to the candidates, got %d", len(got))
	}
}

func TestRollUpgradeOffersFullLoadout(t *testing.T) {
	cfg := DefaultConfig()
	defs := DefaultDefinitions()
	ws := NewWeaponStore(&cfg, defs)
	ws.Init([]string{"blaster", "scatter", "seeker", "nova"})

	for _, o := range RollUpgradeOffers(NewRand(1), defs, ws, 100) {
		if o.Kind == UpgradeNewWeapon {
			t.Errorf("full loadout should not offer %s", o.WeaponID)
		}
	}
}

func TestApplyUpgrade(t *testing.T) {
	cfg := DefaultConfig()
	defs := DefaultDefinitions()
	ps := NewPlayerStore(&cfg)
	ws := NewWeaponStore(&cfg, defs)
	ws.Init([]string{"blaster"})

	tests := []struct {
		offer   UpgradeOffer
		wantErr bool
	}{
		{UpgradeOffer{Kind: UpgradeMaxHP}, false},
		{UpgradeOffer{Kind: UpgradeCurse}, false},
		{UpgradeOffer{Kind: UpgradeNewWeapon, WeaponID: "nova"}, false},
		{UpgradeOffer{Kind: UpgradeNewWeapon, WeaponID: "nova"}, true},
		{UpgradeOffer{Kind: UpgradeWeaponLevel, WeaponID: "railgun"}, true},
		{UpgradeOffer{Kind: UpgradeKind(99)}, true},
	}
	for i, tt := range tests {
		err := ApplyUpgrade(tt.offer, ps, ws)
		if (err != nil) != tt.wantErr {
			t.Errorf("case %d: err = %v, wantErr %v", i, err, tt.wantErr)
		}
	}
	p := ps.Player()
	if p.MaxHP != cfg.PlayerMaxHP+20 {
		t.Errorf("expected max hp +20, got %v", p.MaxHP)
	}
	if p.CurseBonus != 0.15 {
		t.Errorf("expected curse 0.15, got %v", p.CurseBonus)
	}
	if !ws.Has("nova") {
		t.Error("nova should be equipped")
	}
}

func TestRunConfigFinalSystem(t *testing.T) {
	rc := DefaultRunConfig(ModeStandard)
	if rc.IsFinalSystem(1) {
		t.Error("system 1 should not be final in a standard run")
	}
	if !rc.IsFinalSystem(rc.FinalSystem) {
		t.Errorf("system %d should be final", rc.FinalSystem)
	}
	if DefaultRunConfig(ModeEndless).IsFinalSystem(100) {
		t.Error("endless runs have no final system")
	}
}

func TestRunPhaseString(t *testing.T) {
	if PhaseLevelUp.String() != "level_up" || RunPhase(42).String() != "unknown" {
		t.Error("unexpected phase names")
	}
	if !PhaseVictory.Finished() || PhasePaused.Finished() {
		t.Error("only game over and victory are finished")
	}
}

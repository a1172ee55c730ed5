package main

import (
	"fmt"
	"math/rand"
)

// UpgradeKind is a level-up reward
type UpgradeKind int

const (
	UpgradeDamage UpgradeKind = iota
	UpgradeFireRate
	UpgradeMoveSpeed
	UpgradeMaxHP
	UpgradePickupRadius
	UpgradeLuck
	UpgradeCurse
	UpgradeNewWeapon
	UpgradeWeaponLevel
)

// UpgradeOffer is one choice shown on level up
type UpgradeOffer struct {
	Kind     UpgradeKind `msgpack:"k" json:"kind"`
	WeaponID string      `msgpack:"w,omitempty" json:"weaponId,omitempty"`
	Label    string      `msgpack:"l" json:"label"`
}

var statUpgradeLabels = map[UpgradeKind]string{
	UpgradeDamage:       "+15% damage",
	UpgradeFireRate:     "+12% fire rate",
	UpgradeMoveSpeed:    "+10% move speed",
	UpgradeMaxHP:        "+20 max HP",
	UpgradePickupRadius: "+25% pickup radius",
	UpgradeLuck:         "+3% luck",
	UpgradeCurse:        "+15% enemy spawns",
}

// RollUpgradeOffers picks up to n distinct offers for the player's current
// loadout
func RollUpgradeOffers(rng *rand.Rand, defs *Definitions, weapons *WeaponStore, n int) []UpgradeOffer {
	candidates := make([]UpgradeOffer, 0, 16)
	for k := UpgradeDamage; k <= UpgradeCurse; k++ {
		candidates = append(candidates, UpgradeOffer{Kind: k, Label: statUpgradeLabels[k]})
	}
	for _, w := range weapons.Slots() {
		candidates = append(candidates, UpgradeOffer{
			Kind:     UpgradeWeaponLevel,
			WeaponID: w.ID,
			Label:    fmt.Sprintf("%s level %d", defs.Weapon(w.ID).Name, w.Level+1),
		})
	}
	if !weapons.Full() {
		for _, id := range defs.WeaponIDs() {
			if weapons.Has(id) {
				continue
			}
			candidates = append(candidates, UpgradeOffer{
				Kind:     UpgradeNewWeapon,
				WeaponID: id,
				Label:    "New weapon: " + defs.Weapon(id).Name,
			})
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

// ApplyUpgrade applies offer to the player and weapons
func ApplyUpgrade(offer UpgradeOffer, ps *PlayerStore, weapons *WeaponStore) error {
	p := ps.Player()
	switch offer.Kind {
	case UpgradeDamage:
		p.DamageMul *= 1.15
	case UpgradeFireRate:
		p.FireRateMul *= 1.12
	case UpgradeMoveSpeed:
		p.Speed *= 1.10
	case UpgradeMaxHP:
		p.MaxHP += 20
		ps.Heal(20)
	case UpgradePickupRadius:
		p.PickupRadiusMul *= 1.25
	case UpgradeLuck:
		p.Luck += 0.03
	case UpgradeCurse:
		p.CurseBonus += 0.15
	case UpgradeNewWeapon:
		if !weapons.Add(offer.WeaponID) {
			return fmt.Errorf("cannot equip weapon %q", offer.WeaponID)
		}
	case UpgradeWeaponLevel:
		if !weapons.LevelUp(offer.WeaponID) {
			return fmt.Errorf("weapon %q not equipped", offer.WeaponID)
		}
	default:
		return fmt.Errorf("unknown upgrade kind %d", offer.Kind)
	}
	return nil
}

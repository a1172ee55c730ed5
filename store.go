package main

import "fmt"

// Rarity levels for permanent upgrades
const (
	RarityCommon    = 0
	RarityRare      = 1
	RarityEpic      = 2
	RarityLegendary = 3
)

// StoreItem is a permanent upgrade bought with fragments between runs.
// Each rank applies Step once more.
type StoreItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rarity  int     `json:"rarity"`
	Price   int     `json:"price"` // fragments for the first rank
	MaxRank int     `json:"maxRank"`
	Step    float64 `json:"step"`
	Preview string  `json:"preview"`
}

// StoreCatalog is the full list of permanent upgrades
var StoreCatalog = []StoreItem{
	{ID: "hull", Name: "Reinforced Hull", Rarity: RarityCommon, Price: 20, MaxRank: 5, Step: 10, Preview: "+10 max HP per rank"},
	{ID: "thrusters", Name: "Thrusters", Rarity: RarityCommon, Price: 25, MaxRank: 5, Step: 0.05, Preview: "+5% move speed per rank"},
	{ID: "magnet", Name: "Tractor Beam", Rarity: RarityCommon, Price: 25, MaxRank: 5, Step: 0.1, Preview: "+10% pickup radius per rank"},
	{ID: "caliber", Name: "Heavy Caliber", Rarity: RarityRare, Price: 40, MaxRank: 5, Step: 0.05, Preview: "+5% damage per rank"},
	{ID: "autoloader", Name: "Autoloader", Rarity: RarityRare, Price: 40, MaxRank: 5, Step: 0.04, Preview: "+4% fire rate per rank"},
	{ID: "fortune", Name: "Fortune Core", Rarity: RarityEpic, Price: 80, MaxRank: 3, Step: 0.02, Preview: "+2% luck per rank"},
	{ID: "armory", Name: "Armory", Rarity: RarityLegendary, Price: 200, MaxRank: 1, Step: 1, Preview: "Start with a second weapon"},
}

// StoreCatalogMap provides O(1) lookup by item ID
var StoreCatalogMap map[string]StoreItem

func init() {
	StoreCatalogMap = make(map[string]StoreItem, len(StoreCatalog))
	for _, item := range StoreCatalog {
		StoreCatalogMap[item.ID] = item
	}
}

// PriceForRank returns the fragment cost of buying rank (1-based)
func (it StoreItem) PriceForRank(rank int) int {
	if rank < 1 {
		rank = 1
	}
	return it.Price * rank
}

// PurchaseCost validates buying the next rank of id and returns its cost
func PurchaseCost(id string, ranks map[string]int) (int, error) {
	item, ok := StoreCatalogMap[id]
	if !ok {
		return 0, fmt.Errorf("unknown upgrade %q", id)
	}
	next := ranks[id] + 1
	if next > item.MaxRank {
		return 0, fmt.Errorf("%s is at max rank", item.Name)
	}
	return item.PriceForRank(next), nil
}

// ApplyPermanentUpgrades applies owned ranks to a fresh player and returns
// extra weapon ids to equip
func ApplyPermanentUpgrades(ranks map[string]int, ps *PlayerStore) []string {
	p := ps.Player()
	var extra []string
	for id, rank := range ranks {
		item, ok := StoreCatalogMap[id]
		if !ok || rank <= 0 {
			continue
		}
		if rank > item.MaxRank {
			rank = item.MaxRank
		}
		v := item.Step * float64(rank)
		switch id {
		case "hull":
			p.MaxHP += v
			p.HP += v
		case "thrusters":
			p.Speed *= 1 + v
		case "magnet":
			p.PickupRadiusMul *= 1 + v
		case "caliber":
			p.DamageMul *= 1 + v
		case "autoloader":
			p.FireRateMul *= 1 + v
		case "fortune":
			p.Luck += v
		case "armory":
			extra = append(extra, "nova")
		}
	}
	return extra
}

// FragmentsPerRun returns the bonus fragments awarded at the end of a run
func FragmentsPerRun(systemsCleared, bossKills int, won bool) int {
	bonus := systemsCleared*10 + bossKills*15
	if won {
		bonus += 50
	}
	return bonus
}

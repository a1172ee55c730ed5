package main

// ShipClass identifies the player's hull
type ShipClass int

const (
	ClassFighter ShipClass = 0
	ClassTank    ShipClass = 1
	ClassScout   ShipClass = 2
	ClassSupport ShipClass = 3
)

// ShipClassDef scales the base player stats and picks the starting weapon
type ShipClassDef struct {
	Name            string
	HPMul           float64
	SpeedMul        float64
	PickupRadiusMul float64
	Luck            float64
	StartWeapon     string
}

var ShipClasses = [4]ShipClassDef{
	// Fighter: balanced
	{Name: "fighter", HPMul: 1, SpeedMul: 1, PickupRadiusMul: 1, StartWeapon: "blaster"},
	// Tank: slow, tanky, scatter gun
	{Name: "tank", HPMul: 1.6, SpeedMul: 0.8, PickupRadiusMul: 1, StartWeapon: "scatter"},
	// Scout: fast, fragile, wide magnet
	{Name: "scout", HPMul: 0.7, SpeedMul: 1.3, PickupRadiusMul: 1.4, StartWeapon: "blaster"},
	// Support: lucky, homing missiles
	{Name: "support", HPMul: 1.1, SpeedMul: 1, PickupRadiusMul: 1.2, Luck: 0.05, StartWeapon: "seeker"},
}

// GetClassDef returns the definition for a ship class
func GetClassDef(class ShipClass) ShipClassDef {
	if class < 0 || int(class) >= len(ShipClasses) {
		return ShipClasses[ClassFighter]
	}
	return ShipClasses[class]
}

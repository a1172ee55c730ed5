package main

// AchievementDef describes one unlockable achievement
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_blood", "First Blood", "Destroy your first enemy"},
	{"exterminator", "Exterminator", "Destroy 1000 enemies in total"},
	{"horde_breaker", "Horde Breaker", "Destroy 300 enemies in a single run"},
	{"elite_hunter", "Elite Hunter", "Destroy 25 elite enemies in total"},
	{"boss_slayer", "Boss Slayer", "Defeat your first boss"},
	{"jumper", "Jumper", "Reach system 3"},
	{"survivor", "Survivor", "Clear the final system"},
	{"untouchable", "Untouchable", "Clear a system without taking damage"},
	{"hoarder", "Hoarder", "Collect 500 fragments in a single run"},
	{"veteran", "Veteran", "Fly for 1 hour in total"},
}

// AchievementByID returns the definition for id
func AchievementByID(id string) (AchievementDef, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return AchievementDef{}, false
}

// CheckAchievements unlocks whatever a finished run earned. Lifetime stats
// must already include the run. Returns the newly unlocked achievements.
func CheckAchievements(db *DB, playerID int64, run RunStats, system int, won bool) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}
	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	earned := func(id string) bool {
		switch id {
		case "first_blood":
			return stats.Kills >= 1
		case "exterminator":
			return stats.Kills >= 1000
		case "horde_breaker":
			return run.Kills >= 300
		case "elite_hunter":
			return stats.EliteKills >= 25
		case "boss_slayer":
			return stats.BossKills >= 1
		case "jumper":
			return system >= 3 || stats.BestSystem >= 3
		case "survivor":
			return won
		case "untouchable":
			return run.SystemsCleared > 0 && run.DamageTaken == 0
		case "hoarder":
			return run.Fragments >= 500
		case "veteran":
			return stats.Playtime >= 3600
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if has[def.ID] || !earned(def.ID) {
			continue
		}
		if ok, err := db.UnlockAchievement(playerID, def.ID); err == nil && ok {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

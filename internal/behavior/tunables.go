package behavior

// Tunables are the ranch-wide behavior constants. Distances are world units,
// durations milliseconds, chances per decision.
type Tunables struct {
	FoodSearchRadius      float64 `yaml:"food_search_radius"`
	EggSearchRadius       float64 `yaml:"egg_search_radius"`
	InteractDistance      float64 `yaml:"interact_distance"`
	WanderChance          float64 `yaml:"wander_chance"`
	WanderRadius          float64 `yaml:"wander_radius"`
	WalkBeforeSleepChance float64 `yaml:"walk_before_sleep_chance"`
	EatMs                 float64 `yaml:"eat_ms"`
	SleepMs               float64 `yaml:"sleep_ms"`
	WaitMs                float64 `yaml:"wait_ms"`
	UnknownMs             float64 `yaml:"unknown_ms"`
}

// DefaultTunables returns the stock behavior constants.
func DefaultTunables() Tunables {
	return Tunables{
		FoodSearchRadius:      20,
		EggSearchRadius:       10,
		InteractDistance:      1.5,
		WanderChance:          0.2,
		WanderRadius:          8,
		WalkBeforeSleepChance: 0.5,
		EatMs:                 5000,
		SleepMs:               10000,
		WaitMs:                3000,
		UnknownMs:             2000,
	}
}

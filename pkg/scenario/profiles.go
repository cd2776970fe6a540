package scenario

import "time"

// Profile categorizes a scenario by intent and blast radius.
type Profile string

const (
	ProfileSmoke    Profile = "smoke"
	ProfileBaseline Profile = "baseline"
	ProfileStress   Profile = "stress"
	ProfileSpike    Profile = "spike"
	ProfileSoak     Profile = "soak"
)

// ProfileConfig holds the guard rails for a profile. Validation enforces
// the caps so a smoke scenario cannot accidentally declare a stress-sized
// population.
type ProfileConfig struct {
	MaxPeakUsers int
	MaxDuration  time.Duration
	Description  string
	RiskLevel    string // LOW, MEDIUM, HIGH
	StoreEnabled bool   // whether runs are worth keeping in history
}

// GetProfileConfig returns the guard rails for a given profile.
func GetProfileConfig(profile Profile) ProfileConfig {
	configs := map[Profile]ProfileConfig{
		ProfileSmoke: {
			MaxPeakUsers: 5,
			MaxDuration:  5 * time.Minute,
			Description:  "Quick health check with minimal load",
			RiskLevel:    "LOW",
			StoreEnabled: false,
		},
		ProfileBaseline: {
			MaxPeakUsers: 200,
			MaxDuration:  30 * time.Minute,
			Description:  "Steady-state load at expected traffic",
			RiskLevel:    "LOW",
			StoreEnabled: true,
		},
		ProfileStress: {
			MaxPeakUsers: 1000,
			MaxDuration:  2 * time.Hour,
			Description:  "Push past expected capacity to find limits",
			RiskLevel:    "HIGH",
			StoreEnabled: true,
		},
		ProfileSpike: {
			MaxPeakUsers: 2000,
			MaxDuration:  30 * time.Minute,
			Description:  "Sudden burst against a steady baseline",
			RiskLevel:    "HIGH",
			StoreEnabled: true,
		},
		ProfileSoak: {
			MaxPeakUsers: 200,
			MaxDuration:  12 * time.Hour,
			Description:  "Sustained load hunting leaks and slow drift",
			RiskLevel:    "MEDIUM",
			StoreEnabled: true,
		},
	}

	if config, exists := configs[profile]; exists {
		return config
	}

	// Conservative default for unknown profiles
	return ProfileConfig{
		MaxPeakUsers: 50,
		MaxDuration:  15 * time.Minute,
		Description:  "Unknown profile",
		RiskLevel:    "MEDIUM",
		StoreEnabled: true,
	}
}

// KnownProfile reports whether the profile is one of the defined set.
func KnownProfile(profile Profile) bool {
	switch profile {
	case ProfileSmoke, ProfileBaseline, ProfileStress, ProfileSpike, ProfileSoak:
		return true
	}
	return false
}

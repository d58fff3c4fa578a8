package matching

import "math"

// Slider defaults applied when a field was never set. Smoking defaults to 0
// rather than the midpoint: an unset smoking slider has always meant
// "non-smoker" in the stored data, and changing it would reshuffle
// historical scores.
const (
	defaultSlider  = 50
	defaultSmoking = 0
)

// Fixed bonuses layered on top of the distance-scored sliders.
const (
	neighborhoodBonus = 20
	genderPrefBonus   = 15
)

// Score computes the 0-100 compatibility score for a pair of profiles.
// It is pure and symmetric: Score(a, b) == Score(b, a).
//
// A bidirectional gender-preference mismatch is a dealbreaker and zeroes the
// score outright, but only when both sides have stated a preference and a
// gender. A profile without a preferences record scores 0 against everyone.
func Score(a, b *Profile) int {
	if a == nil || b == nil || a.Preferences == nil || b.Preferences == nil {
		return 0
	}

	genderGated := len(a.GenderPreference) > 0 && len(b.GenderPreference) > 0 &&
		a.Gender != "" && b.Gender != ""
	if genderGated {
		if !accepts(b.GenderPreference, a.Gender) || !accepts(a.GenderPreference, b.Gender) {
			return 0
		}
	}

	ap, bp := a.Preferences, b.Preferences

	var score, factors float64

	// Closeness-scored sliders: every point of distance costs two points,
	// floored at zero. Always counted, absent values default to the midpoint.
	for _, pair := range [][2]*int{
		{ap.Cleanliness, bp.Cleanliness},
		{ap.NoiseLevel, bp.NoiseLevel},
		{ap.Guests, bp.Guests},
		{ap.SleepSchedule, bp.SleepSchedule},
		{ap.Budget, bp.Budget},
		{ap.LeaseLength, bp.LeaseLength},
	} {
		diff := absInt(valueOr(pair[0], defaultSlider) - valueOr(pair[1], defaultSlider))
		score += math.Max(0, float64(100-2*diff))
		factors++
	}

	// Smoking and pets want near-exact agreement, so they are tier-scored
	// instead of distance-scored, and only count when both sides set them.
	if ap.Smoking != nil && bp.Smoking != nil {
		score += tierScore(absInt(valueOr(ap.Smoking, defaultSmoking) - valueOr(bp.Smoking, defaultSmoking)))
		factors++
	}
	if ap.Pets != nil && bp.Pets != nil {
		score += tierScore(absInt(valueOr(ap.Pets, defaultSlider) - valueOr(bp.Pets, defaultSlider)))
		factors++
	}

	// Flat bonus for any shared neighborhood label.
	if len(a.Neighborhoods) > 0 && len(b.Neighborhoods) > 0 && overlaps(a.Neighborhoods, b.Neighborhoods) {
		score += neighborhoodBonus
		factors++
	}

	// Flat bonus when the dealbreaker check ran and passed.
	if genderGated {
		score += genderPrefBonus
		factors++
	}

	if factors == 0 {
		return 0
	}
	return int(math.Round(score / factors))
}

// accepts reports whether a gender preference set admits the given gender.
func accepts(prefs []string, gender string) bool {
	for _, p := range prefs {
		if p == GenderAny || p == gender {
			return true
		}
	}
	return false
}

// tierScore maps a slider distance to 100 (close), 50 (middling) or 0.
func tierScore(diff int) float64 {
	switch {
	case diff < 33:
		return 100
	case diff < 66:
		return 50
	default:
		return 0
	}
}

func overlaps(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

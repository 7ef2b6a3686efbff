package builder

import "math"

// TotalUnits is the fixed weight that maps to 100% completion.
const TotalUnits = 12

// ProgressUnits sums the completion units of st, capped at TotalUnits.
//
// Each non-empty basic field is one unit, a non-empty skill list is one
// unit, and each education or experience entry adds the share of its four
// fields that are filled.
func ProgressUnits(st State) float64 {
	n := 0.0
	for _, f := range BasicFields {
		if filled(st.Profile.Get(f)) {
			n++
		}
	}
	if len(st.Skills) > 0 {
		n++
	}
	n += educationList.units(st.Education)
	n += experienceList.units(st.Experience)
	return math.Min(n, TotalUnits)
}

// Progress returns the completion percentage of st in [0, 100].
func Progress(st State) int {
	return int(math.Round(ProgressUnits(st) / TotalUnits * 100))
}

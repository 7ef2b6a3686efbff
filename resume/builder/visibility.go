package builder

// Visibility tells which conditional preview sections are shown.
type Visibility struct {
	Summary    bool `json:"summary"`
	Skills     bool `json:"skills"`
	Education  bool `json:"education"`
	Experience bool `json:"experience"`
}

// Sections derives section visibility from st.
func Sections(st State) Visibility {
	return Visibility{
		Summary:    filled(st.Profile.Summary),
		Skills:     len(st.Skills) > 0,
		Education:  len(st.Education) > 0,
		Experience: len(st.Experience) > 0,
	}
}

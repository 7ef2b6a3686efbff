package builder

import (
	"slices"
	"strings"
)

// addSkills splits raw on commas and appends every trimmed, non-empty piece
// that is not already present. It returns the updated slice and how many
// skills were appended.
func addSkills(skills []string, raw string) ([]string, int) {
	added := 0
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" || slices.Contains(skills, piece) {
			continue
		}
		skills = append(skills, piece)
		added++
	}
	return skills, added
}

// removeSkill drops the skill at index. Out of range indexes leave the
// slice untouched.
func removeSkill(skills []string, index int) ([]string, bool) {
	if index < 0 || index >= len(skills) {
		return skills, false
	}
	out := make([]string, 0, len(skills)-1)
	out = append(out, skills[:index]...)
	out = append(out, skills[index+1:]...)
	return out, true
}

package constants

import (
	"strings"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

var allGenders = []Gender{
	Male,
	Female,
}

func GendersAsStringSlice() []string {
	result := make([]string, len(allGenders))
	for i, g := range allGenders {
		result[i] = string(g)
	}
	return result
}

// CanonicalizeGender maps free-form model output ("male", "M", "woman", ...)
// onto the Gender enum. The second return is false when the label is unknown.
func CanonicalizeGender(input string) (Gender, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// synonyms map
	synonyms := map[string]Gender{
		"m":      Male,
		"man":    Male,
		"male":   Male,
		"f":      Female,
		"woman":  Female,
		"female": Female,
	}

	if g, ok := synonyms[normalized]; ok {
		return g, true
	}

	for _, g := range allGenders {
		if strings.EqualFold(string(g), normalized) {
			return g, true
		}
	}
	return "", false
}

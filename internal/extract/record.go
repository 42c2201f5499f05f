package extract

import (
	"github.com/oyelola-a/lineage-extractor/constants"
)

// PersonRecord is the normalized shape we want from the model: one
// biographical entity mentioned in a historical document. Only the name
// fields are required; everything else is nullable.
type PersonRecord struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	MiddleNames *string `json:"middle_names,omitempty"`
	Gender      *string `json:"gender,omitempty"`       // Male | Female
	BirthDate   *string `json:"birth_date,omitempty"`   // YYYY-MM-DD
	BirthPlace  *string `json:"birth_place,omitempty"`
	DeathDate   *string `json:"death_date,omitempty"`   // YYYY-MM-DD
	DeathPlace  *string `json:"death_place,omitempty"`
	BurialPlace *string `json:"burial_place,omitempty"`
	AgeAtDeath  *string `json:"age_at_death,omitempty"`
}

// requiredFields must be present as non-empty strings on every valid record.
var requiredFields = []string{"first_name", "last_name"}

// BuildPersonJSONSchema returns a JSON-Schema (draft 2020-12 subset) for a
// single person record as a generic map. It is both the external contract
// consumed by downstream persistence and the schema used locally to validate.
func BuildPersonJSONSchema() map[string]any {
	genderEnum := make([]any, 0, 3)
	for _, g := range constants.GendersAsStringSlice() {
		genderEnum = append(genderEnum, g)
	}
	genderEnum = append(genderEnum, nil)

	props := map[string]any{
		"first_name":   map[string]any{"type": "string", "minLength": 1},
		"last_name":    map[string]any{"type": "string", "minLength": 1},
		"middle_names": nullableStringProp(),
		"gender":       map[string]any{"enum": genderEnum},
		"birth_date":   dateProp(),
		"birth_place":  nullableStringProp(),
		"death_date":   dateProp(),
		"death_place":  nullableStringProp(),
		"burial_place": nullableStringProp(),
		"age_at_death": nullableStringProp(),
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"first_name", "last_name"},
	}
}

// BuildPersonCollectionJSONSchema returns the derived schema for a
// homogeneous collection of person records.
func BuildPersonCollectionJSONSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": BuildPersonJSONSchema(),
	}
}

func nullableStringProp() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func dateProp() map[string]any {
	return map[string]any{
		"type":    []any{"string", "null"},
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

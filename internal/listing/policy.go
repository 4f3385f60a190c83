package listing

import (
	"strings"

	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/resolve"
)

// CanonicalGender maps the free-text gender policy of a record onto
// male/female/mixed. Mixed is tested first and female before male because
// "female" contains "male".
func CanonicalGender(s string) string {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case l == "":
		return model.GenderUnknown
	case strings.Contains(l, "mix"), strings.Contains(l, "co-ed"), strings.Contains(l, "coed"),
		strings.Contains(l, "รวม"), strings.Contains(l, "both"):
		return model.GenderMixed
	case strings.Contains(l, "female"), strings.Contains(l, "women"), strings.Contains(l, "girl"),
		strings.Contains(l, "หญิง"):
		return model.GenderFemale
	case strings.Contains(l, "male"), strings.Contains(l, "men"), strings.Contains(l, "boy"),
		strings.Contains(l, "ชาย"):
		return model.GenderMale
	}
	return model.GenderUnknown
}

// PetAffirmative reports whether a pet policy value allows pets: boolean true
// or a string equal to "true"/"1" or containing "yes"/"allow". Explicit
// negations ("not allowed", "disallow", "no pets") are never affirmative.
func PetAffirmative(v any) bool {
	var s string
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s = t
	default:
		if f, ok := resolve.AsFloat(v); ok {
			return f == 1
		}
		s = resolve.AsString(v)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	for _, neg := range []string{"not allow", "disallow", "no pet", "not permitted", "ไม่อนุญาต"} {
		if strings.Contains(s, neg) {
			return false
		}
	}
	if s == "true" || s == "1" {
		return true
	}
	return strings.Contains(s, "yes") || strings.Contains(s, "allow")
}

// CoolingOf detects the cooling mode of a room type from its name.
func CoolingOf(name string) string {
	l := strings.ToLower(name)
	switch {
	case strings.Contains(l, "air"), strings.Contains(l, "แอร์"):
		return model.CoolingAir
	case strings.Contains(l, "fan"), strings.Contains(l, "พัดลม"):
		return model.CoolingFan
	}
	return model.CoolingUnknown
}

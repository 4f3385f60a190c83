package listing

import (
	"strings"

	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/resolve"
)

var (
	amenityListPaths = []string{"amenities", "amenity_list", "facility_list"}
	amenityTextPaths = []string{"amenities_text", "facilities", "amenity_text", "amenities"}
	amenityJoinPaths = []string{"dorm_amenities", "amenity_links", "amenity_refs"}
)

// NormalizeLabel trims a label and collapses internal whitespace.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LabelKey is the comparison key of a label: normalized and lower-cased.
func LabelKey(s string) string {
	return strings.ToLower(NormalizeLabel(s))
}

// extractAmenities resolves the amenity labels from the first available
// source: an explicit list, then a delimited text field, then a join table
// of amenity references.
func (n *Normalizer) extractAmenities(rec model.RawRecord) []string {
	if labels := explicitAmenities(rec); len(labels) > 0 {
		return dedupeLabels(labels)
	}
	if labels := textAmenities(rec); len(labels) > 0 {
		return dedupeLabels(labels)
	}
	return dedupeLabels(n.joinedAmenities(rec))
}

func explicitAmenities(rec model.RawRecord) []string {
	var out []string
	for _, item := range resolve.List(rec, amenityListPaths...) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func textAmenities(rec model.RawRecord) []string {
	for _, p := range amenityTextPaths {
		v, ok := resolve.Lookup(rec, p)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n' || r == '\r'
		})
	}
	return nil
}

func (n *Normalizer) joinedAmenities(rec model.RawRecord) []string {
	var out []string
	for _, item := range resolve.List(rec, amenityJoinPaths...) {
		ref, ok := resolve.AsRecord(item)
		if !ok {
			continue
		}
		// Join rows either embed the amenity or carry its columns directly.
		target := ref
		if nested, ok := resolve.First(ref, "amenity", "amenities"); ok {
			if r, ok := resolve.AsRecord(nested); ok {
				target = r
			}
		}
		if name := n.localized(target, "name"); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// dedupeLabels normalizes labels and drops case-insensitive duplicates,
// keeping the first spelling seen.
func dedupeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = NormalizeLabel(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

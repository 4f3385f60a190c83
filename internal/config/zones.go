package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// ZoneOther is the bucket for listings that match no configured zone.
const ZoneOther = "Other"

// ZoneAll is the search sentinel meaning "every zone".
const ZoneAll = "All"

// Zone is one geographic bucket and the keywords that identify it in free-text
// addresses. Keywords carry both the Latin and the Thai spelling.
type Zone struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ZoneTable is the ordered list of zones. Order is the canonical display
// order and also the match priority: the first zone whose keyword occurs in
// the text wins.
type ZoneTable struct {
	Zones []Zone `yaml:"zones"`
}

// DefaultZones is used when no ZONES_FILE is configured.
func DefaultZones() ZoneTable {
	return ZoneTable{Zones: []Zone{
		{Name: "Front Gate", Keywords: []string{"front gate", "หน้ามอ", "หน้ามหาวิทยาลัย"}},
		{Name: "Back Gate", Keywords: []string{"back gate", "หลังมอ", "หลังมหาวิทยาลัย"}},
		{Name: "Kham Riang", Keywords: []string{"kham riang", "khamriang", "ขามเรียง"}},
		{Name: "Tha Khon Yang", Keywords: []string{"tha khon yang", "ท่าขอนยาง"}},
		{Name: "Downtown", Keywords: []string{"downtown", "city", "ในเมือง", "ตัวเมือง"}},
	}}
}

// LoadZones reads a zone table from a YAML file; an empty path returns the
// defaults.
//
//	zones:
//	  - name: Front Gate
//	    keywords: ["front gate", "หน้ามอ"]
func LoadZones(path string) (ZoneTable, error) {
	if path == "" {
		return DefaultZones(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ZoneTable{}, fmt.Errorf("read zones file: %w", err)
	}
	var zt ZoneTable
	if err := yaml.Unmarshal(raw, &zt); err != nil {
		return ZoneTable{}, fmt.Errorf("parse zones file: %w", err)
	}
	if len(zt.Zones) == 0 {
		return ZoneTable{}, fmt.Errorf("zones file %s defines no zones", path)
	}
	return zt, nil
}

// Names returns the canonical zone order, ending with ZoneOther.
func (zt ZoneTable) Names() []string {
	out := make([]string, 0, len(zt.Zones)+1)
	for _, z := range zt.Zones {
		out = append(out, z.Name)
	}
	return append(out, ZoneOther)
}

// Lookup returns the configured zone name matching name case-insensitively.
func (zt ZoneTable) Lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, ZoneOther) {
		return ZoneOther, true
	}
	for _, z := range zt.Zones {
		if strings.EqualFold(z.Name, name) {
			return z.Name, true
		}
	}
	return "", false
}

// Classify returns the first zone with a keyword contained in any of texts,
// or ZoneOther.
func (zt ZoneTable) Classify(texts ...string) string {
	lowered := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	for _, z := range zt.Zones {
		for _, kw := range z.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			for _, t := range lowered {
				if strings.Contains(t, kw) {
					return z.Name
				}
			}
		}
	}
	return ZoneOther
}

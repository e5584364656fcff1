// Package regions classifies wineries into altitude zones from an operator-edited YAML file.
package regions

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownZone is returned when neither the manual region nor the location matches.
const UnknownZone = "unknown"

//go:embed default.yaml
var defaultRegions []byte

type Zone struct {
	ID     string `yaml:"id" json:"id"`
	Label  string `yaml:"label" json:"label"`
	MinAlt int    `yaml:"minAlt" json:"minAlt"`
	Region string `yaml:"-" json:"region"`
}

type ZoneTowns struct {
	Zone  string
	Towns []string
}

// TownMap keeps the YAML mapping order, which decides ties between overlapping town names.
type TownMap []ZoneTowns

func (m *TownMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: locationMap must be a mapping", node.Line)
	}
	out := make(TownMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var towns []string
		if err := node.Content[i+1].Decode(&towns); err != nil {
			return fmt.Errorf("locationMap %q: %w", node.Content[i].Value, err)
		}
		out = append(out, ZoneTowns{Zone: node.Content[i].Value, Towns: towns})
	}
	*m = out
	return nil
}

type TownAltitude struct {
	Town   string
	Meters int
}

// AltitudeMap keeps the YAML mapping order.
type AltitudeMap []TownAltitude

func (m *AltitudeMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: locationAltitudes must be a mapping", node.Line)
	}
	out := make(AltitudeMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var meters int
		if err := node.Content[i+1].Decode(&meters); err != nil {
			return fmt.Errorf("locationAltitudes %q: %w", node.Content[i].Value, err)
		}
		out = append(out, TownAltitude{Town: node.Content[i].Value, Meters: meters})
	}
	*m = out
	return nil
}

type Region struct {
	ID                string      `yaml:"id"`
	Label             string      `yaml:"label"`
	Zones             []Zone      `yaml:"zones"`
	LocationMap       TownMap     `yaml:"locationMap"`
	LocationAltitudes AltitudeMap `yaml:"locationAltitudes"`
}

type Registry struct {
	Regions []Region `yaml:"regions"`
}

// Load reads a regions file; an empty path selects the built-in default.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	return Parse(data)
}

func Default() (*Registry, error) {
	return Parse(defaultRegions)
}

func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse regions: %w", err)
	}

	seen := make(map[string]string)
	for ri := range reg.Regions {
		region := &reg.Regions[ri]
		if region.ID == "" {
			return nil, fmt.Errorf("region %d has no id", ri)
		}
		local := make(map[string]bool)
		for zi := range region.Zones {
			zone := &region.Zones[zi]
			if zone.ID == "" || zone.Label == "" {
				return nil, fmt.Errorf("region %s: zone %d needs an id and a label", region.ID, zi)
			}
			if other, dup := seen[zone.ID]; dup {
				return nil, fmt.Errorf("zone %q defined in both %s and %s", zone.ID, other, region.ID)
			}
			if zone.ID == UnknownZone {
				return nil, fmt.Errorf("zone id %q is reserved", UnknownZone)
			}
			seen[zone.ID] = region.ID
			local[zone.ID] = true
			zone.Region = region.ID
		}
		for _, zt := range region.LocationMap {
			if !local[zt.Zone] {
				return nil, fmt.Errorf("region %s: locationMap refers to unknown zone %q", region.ID, zt.Zone)
			}
		}
	}
	return &reg, nil
}

// Zones lists every zone in file order.
func (r *Registry) Zones() []Zone {
	var zones []Zone
	for _, region := range r.Regions {
		zones = append(zones, region.Zones...)
	}
	return zones
}

func (r *Registry) Zone(id string) (Zone, bool) {
	for _, region := range r.Regions {
		for _, zone := range region.Zones {
			if zone.ID == id {
				return zone, true
			}
		}
	}
	return Zone{}, false
}

// Classify picks the zone for a winery. A manually entered region wins over the
// location; the location is matched by town name substrings.
func (r *Registry) Classify(manualRegion, location string) string {
	manual := strings.ToLower(strings.TrimSpace(manualRegion))
	loc := strings.ToLower(location)

	if manual != "" {
		for _, region := range r.Regions {
			for _, zone := range region.Zones {
				if strings.Contains(manual, zone.ID) || strings.Contains(manual, strings.ToLower(zone.Label)) {
					return zone.ID
				}
			}
			if region.ID == "vda" {
				if id := legacyValleyZone(manual); id != "" {
					return id
				}
			}
		}
	}

	if loc == "" {
		return UnknownZone
	}
	for _, region := range r.Regions {
		for _, zt := range region.LocationMap {
			for _, town := range zt.Towns {
				if town != "" && strings.Contains(loc, strings.ToLower(town)) {
					return zt.Zone
				}
			}
		}
	}
	return UnknownZone
}

// legacyValleyZone understands the free-text region names older entries were saved with.
func legacyValleyZone(manual string) string {
	switch {
	case strings.Contains(manual, "bassa"):
		return "bassa"
	case strings.Contains(manual, "nus"), strings.Contains(manual, "quart"):
		return "nus-quart"
	case strings.Contains(manual, "plaine") && !strings.Contains(manual, "valdigne"):
		return "la-plaine"
	case strings.Contains(manual, "media valle"), strings.Contains(manual, "verso la valdigne"):
		return "plaine-to-valdigne"
	}
	return ""
}

// Altitude returns the altitude of the first known town in location, or 0.
func (r *Registry) Altitude(location string) int {
	loc := strings.ToLower(location)
	if loc == "" {
		return 0
	}
	for _, region := range r.Regions {
		for _, ta := range region.LocationAltitudes {
			town := strings.ToLower(strings.ReplaceAll(ta.Town, "_", " "))
			if town != "" && strings.Contains(loc, town) {
				return ta.Meters
			}
		}
	}
	return 0
}

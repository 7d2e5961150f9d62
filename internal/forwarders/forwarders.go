// Package forwarders holds the freight forwarder roster and assigns one
// forwarder per shipment by country coverage.
package forwarders

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Forwarder is one roster entry. Countries lists the lanes it covers;
// Fallback marks a forwarder usable for any lane.
type Forwarder struct {
	Name      string   `yaml:"name" json:"name"`
	Email     string   `yaml:"email" json:"email"`
	Countries []string `yaml:"countries" json:"countries"`
	Fallback  bool     `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// Registry answers assignment queries over a fixed roster.
type Registry struct {
	roster []Forwarder
}

// NewRegistry builds a registry over the given roster.
func NewRegistry(roster []Forwarder) *Registry {
	return &Registry{roster: roster}
}

// LoadFile reads a YAML roster: a top-level "forwarders" list.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forwarders: reading roster: %w", err)
	}
	var file struct {
		Forwarders []Forwarder `yaml:"forwarders"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("forwarders: decoding roster: %w", err)
	}
	return NewRegistry(file.Forwarders), nil
}

// Assign picks one forwarder for the lane: destination-country coverage
// beats origin-country coverage beats a fallback forwarder. Roster order
// breaks ties. Returns false when nothing matches.
func (r *Registry) Assign(originCountry, destCountry string) (map[string]any, bool) {
	if f, ok := r.matchCountry(destCountry); ok {
		return f.asMap("destination_country"), true
	}
	if f, ok := r.matchCountry(originCountry); ok {
		return f.asMap("origin_country"), true
	}
	for _, f := range r.roster {
		if f.Fallback {
			return f.asMap("fallback"), true
		}
	}
	return nil, false
}

func (r *Registry) matchCountry(country string) (Forwarder, bool) {
	key := normalize(country)
	if key == "" {
		return Forwarder{}, false
	}
	for _, f := range r.roster {
		for _, c := range f.Countries {
			if normalize(c) == key {
				return f, true
			}
		}
	}
	return Forwarder{}, false
}

func (f Forwarder) asMap(matchedOn string) map[string]any {
	return map[string]any{
		"name":       f.Name,
		"email":      f.Email,
		"countries":  f.Countries,
		"matched_on": matchedOn,
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "usa", "us", "united states of america":
		return "united states"
	case "uk", "great britain":
		return "united kingdom"
	}
	return s
}

// Default returns the starter roster used when no file is configured.
func Default() *Registry {
	return NewRegistry([]Forwarder{
		{Name: "Pacific Gateway Logistics", Email: "rates@pacificgateway.example", Countries: []string{"United States", "Canada", "Mexico"}},
		{Name: "Sino Freight Partners", Email: "quotes@sinofreight.example", Countries: []string{"China", "South Korea", "Vietnam", "Japan"}},
		{Name: "Benelux Cargo Services", Email: "pricing@beneluxcargo.example", Countries: []string{"Netherlands", "Belgium", "Germany", "France"}},
		{Name: "Global Lanes Forwarding", Email: "desk@globallanes.example", Countries: []string{}, Fallback: true},
	})
}

// Package salesteam assigns a sales person to each quote request by
// destination region, falling back to round-robin.
package salesteam

import (
	"strings"
	"sync/atomic"

	"github.com/ignite/freightdesk/internal/domain"
)

// Member is one sales roster entry. Regions lists the destination
// countries they own.
type Member struct {
	Name    string   `yaml:"name" json:"name"`
	Email   string   `yaml:"email" json:"email"`
	Regions []string `yaml:"regions,omitempty" json:"regions,omitempty"`
}

// Roster implements assignment over a fixed member list.
type Roster struct {
	members []Member
	next    atomic.Uint64
}

// NewRoster builds a roster. An empty roster assigns nobody.
func NewRoster(members []Member) *Roster {
	return &Roster{members: members}
}

// Assign picks the owner of the request: a region match on the
// destination country first, then round-robin across the team.
func (r *Roster) Assign(merged domain.Extraction) map[string]any {
	if len(r.members) == 0 {
		return nil
	}
	dest := strings.ToLower(merged.ShipmentDetails.DestinationCountry)
	if dest != "" {
		for _, m := range r.members {
			for _, region := range m.Regions {
				if strings.ToLower(region) == dest {
					return m.asMap("region")
				}
			}
		}
	}
	idx := (r.next.Add(1) - 1) % uint64(len(r.members))
	return r.members[idx].asMap("round_robin")
}

func (m Member) asMap(matchedOn string) map[string]any {
	return map[string]any{
		"name":       m.Name,
		"email":      m.Email,
		"matched_on": matchedOn,
	}
}

// Default is the starter roster used when none is configured.
func Default() *Roster {
	return NewRoster([]Member{
		{Name: "Ana Silva", Email: "ana.silva@freightdesk.io", Regions: []string{"United States", "Canada"}},
		{Name: "Wei Chen", Email: "wei.chen@freightdesk.io", Regions: []string{"China", "South Korea", "Japan"}},
		{Name: "Jonas Meyer", Email: "jonas.meyer@freightdesk.io", Regions: []string{"Germany", "Netherlands", "Belgium"}},
	})
}

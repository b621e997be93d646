package domain

import (
	"slices"
	"strings"
)

type Connection struct {
	To      string `json:"to"`
	Minutes int    `json:"time"`
}

type Station struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Connections []Connection `json:"connections"`
}

// StationGraph maps a station id to its station. It is read-only reference data.
type StationGraph map[string]Station

// Connected reports whether there is a direct edge from -> to.
func (g StationGraph) Connected(from, to string) (int, bool) {
	st, ok := g[from]
	if !ok {
		return 0, false
	}
	for _, c := range st.Connections {
		if c.To == to {
			return c.Minutes, true
		}
	}
	return 0, false
}

// IDs returns the station ids in ascending order.
func (g StationGraph) IDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FindByName looks a station up by display name, ignoring case.
func (g StationGraph) FindByName(name string) (Station, bool) {
	name = strings.TrimSpace(name)
	for _, id := range g.IDs() {
		if strings.EqualFold(g[id].Name, name) {
			return g[id], true
		}
	}
	return Station{}, false
}

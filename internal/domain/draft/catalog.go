package draft

import "sort"

// Genres is the fixed catalog an event genre must come from.
var Genres = []string{
	"Cultural Fest",
	"Musical Concerts",
	"Comedy Shows",
	"Sports",
	"Science Fair",
}

var stateCities = map[string][]string{
	"Andhra Pradesh":    {"Vijayawada", "Visakhapatnam"},
	"Arunachal Pradesh": {"Itanagar", "Tawang"},
	"Assam":             {"Guwahati", "Dibrugarh"},
	"Bihar":             {"Patna", "Gaya"},
	"Chhattisgarh":      {"Raipur", "Bhilai"},
	"Goa":               {"Panaji", "Vasco da Gama"},
	"Gujarat":           {"Ahmedabad", "Surat"},
	"Haryana":           {"Gurgaon", "Faridabad"},
}

// IsGenre reports whether g is in the catalog.
func IsGenre(g string) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// States returns the supported states in alphabetical order.
func States() []string {
	states := make([]string, 0, len(stateCities))
	for s := range stateCities {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// IsState reports whether s is a supported state.
func IsState(s string) bool {
	_, ok := stateCities[s]
	return ok
}

// Cities returns the cities of state, or nil for an unknown state.
func Cities(state string) []string {
	cities, ok := stateCities[state]
	if !ok {
		return nil
	}
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// CityInState reports whether city belongs to state.
func CityInState(state, city string) bool {
	for _, c := range stateCities[state] {
		if c == city {
			return true
		}
	}
	return false
}

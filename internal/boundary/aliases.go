package boundary

import "strings"

// Known spellings returned by the boundary service that differ from the
// names on RTO records. Keyed by state code.
var staticAliases = map[string]map[string]string{
	"KA": {
		"Bengaluru North": "Bengaluru Rural",
		"Bangalore":       "Bengaluru Urban",
		"Bangalore Urban": "Bengaluru Urban",
		"Bangalore Rural": "Bengaluru Rural",
		"Bagalkote":       "Bagalkot",
		"Bellary":         "Ballari",
		"Belgaum":         "Belagavi",
		"Gulbarga":        "Kalaburagi",
		"Shimoga":         "Shivamogga",
		"Tumkur":          "Tumakuru",
		"Bijapur":         "Vijayapura",
		"Mysore":          "Mysuru",
		"Chamarajanagara": "Chamarajanagar",
		"Chikmagalur":     "Chikkamagaluru",
		"Chickballapur":   "Chikkaballapur",
	},
	"KL": {
		"Trivandrum": "Thiruvananthapuram",
		"Quilon":     "Kollam",
		"Alleppey":   "Alappuzha",
		"Cochin":     "Ernakulam",
		"Trichur":    "Thrissur",
		"Palghat":    "Palakkad",
		"Calicut":    "Kozhikode",
		"Cannanore":  "Kannur",
	},
	"TN": {
		"Tuticorin":   "Thoothukudi",
		"Trichy":      "Tiruchirappalli",
		"Kanyakumari": "Kanniyakumari",
		"Nilgiris":    "The Nilgiris",
		"Villupuram":  "Viluppuram",
	},
	"MH": {
		"Mumbai":     "Mumbai City",
		"Aurangabad": "Chhatrapati Sambhajinagar",
		"Osmanabad":  "Dharashiv",
		"Ahmednagar": "Ahilyanagar",
	},
	"GA": {
		"North Goa District": "North Goa",
		"South Goa District": "South Goa",
	},
}

var stateCodes = map[string]string{
	"karnataka":   "KA",
	"kerala":      "KL",
	"tamil nadu":  "TN",
	"maharashtra": "MH",
	"goa":         "GA",
}

// AliasesFor returns a copy of the built-in alias table of a state given by
// name or code; empty for states without one.
func AliasesFor(state string) map[string]string {
	key := strings.ToUpper(strings.TrimSpace(state))
	if code, ok := stateCodes[strings.ToLower(strings.TrimSpace(state))]; ok {
		key = code
	}
	out := make(map[string]string, len(staticAliases[key]))
	for k, v := range staticAliases[key] {
		out[k] = v
	}
	return out
}

// Merge overlays extra on base into a new map; extra wins on conflicts.
func Merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

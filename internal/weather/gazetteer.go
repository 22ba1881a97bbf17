package weather

import "strings"

// gazetteerEntry pins one place name to its coordinates. Order matters: the
// lookup walks entries top to bottom and the first match wins.
type gazetteerEntry struct {
	name   string
	coords Coordinates
}

// gazetteer covers the states, cities, and agricultural districts the risk
// catalog knows about. State entries use their capital's coordinates.
var gazetteer = []gazetteerEntry{
	// States (capitals)
	{"punjab", Coordinates{31.1471, 75.3412}},
	{"haryana", Coordinates{29.0588, 76.0856}},
	{"uttar pradesh", Coordinates{26.8467, 80.9462}},
	{"rajasthan", Coordinates{26.9124, 75.7873}},
	{"gujarat", Coordinates{23.0225, 72.5714}},
	{"maharashtra", Coordinates{19.0760, 72.8777}},
	{"karnataka", Coordinates{12.9716, 77.5946}},
	{"tamil nadu", Coordinates{13.0827, 80.2707}},
	{"kerala", Coordinates{8.5241, 76.9366}},
	{"west bengal", Coordinates{22.5726, 88.3639}},
	{"bihar", Coordinates{25.5941, 85.1376}},
	{"madhya pradesh", Coordinates{23.2599, 77.4126}},
	{"odisha", Coordinates{20.2961, 85.8245}},
	{"assam", Coordinates{26.1445, 91.7362}},
	{"telangana", Coordinates{17.3850, 78.4867}},
	{"andhra pradesh", Coordinates{16.5062, 80.6480}},

	// Tier 1 cities
	{"mumbai", Coordinates{19.0760, 72.8777}},
	{"delhi", Coordinates{28.6139, 77.2090}},
	{"bengaluru", Coordinates{12.9716, 77.5946}},
	{"hyderabad", Coordinates{17.3850, 78.4867}},
	{"chennai", Coordinates{13.0827, 80.2707}},
	{"kolkata", Coordinates{22.5726, 88.3639}},
	{"ahmedabad", Coordinates{23.0225, 72.5714}},
	{"pune", Coordinates{18.5204, 73.8567}},

	// Tier 2 cities
	{"jaipur", Coordinates{26.9124, 75.7873}},
	{"lucknow", Coordinates{26.8467, 80.9462}},
	{"kanpur", Coordinates{26.4499, 80.3319}},
	{"nagpur", Coordinates{21.1458, 79.0882}},
	{"indore", Coordinates{22.7196, 75.8577}},
	{"bhopal", Coordinates{23.2599, 77.4126}},
	{"patna", Coordinates{25.5941, 85.1376}},
	{"vadodara", Coordinates{22.3072, 73.1812}},
	{"surat", Coordinates{21.1702, 72.8311}},
	{"ludhiana", Coordinates{30.9010, 75.8573}},
	{"agra", Coordinates{27.1767, 78.0081}},
	{"nashik", Coordinates{19.9975, 73.7898}},
	{"varanasi", Coordinates{25.3176, 82.9739}},
	{"coimbatore", Coordinates{11.0168, 76.9558}},
	{"kochi", Coordinates{9.9312, 76.2673}},
	{"guwahati", Coordinates{26.1445, 91.7362}},
	{"chandigarh", Coordinates{30.7333, 76.7794}},
	{"mysuru", Coordinates{12.2958, 76.6394}},
	{"jodhpur", Coordinates{26.2389, 73.0243}},

	// Tier 3 cities
	{"amritsar", Coordinates{31.6340, 74.8723}},
	{"jalandhar", Coordinates{31.3260, 75.5762}},
	{"patiala", Coordinates{30.3398, 76.3869}},
	{"bathinda", Coordinates{30.2110, 74.9455}},
	{"hisar", Coordinates{29.1492, 75.7217}},
	{"karnal", Coordinates{29.6857, 76.9905}},
	{"udaipur", Coordinates{24.5854, 73.7125}},
	{"kota", Coordinates{25.2138, 75.8648}},
	{"bikaner", Coordinates{28.0229, 73.3119}},
	{"jaisalmer", Coordinates{26.9157, 70.9083}},
	{"solapur", Coordinates{17.6599, 75.9064}},
	{"kolhapur", Coordinates{16.7050, 74.2433}},
	{"jabalpur", Coordinates{23.1815, 79.9864}},
	{"gwalior", Coordinates{26.2183, 78.1828}},
	{"siliguri", Coordinates{26.7271, 88.6393}},
	{"hubli", Coordinates{15.3647, 75.1240}},
	{"madurai", Coordinates{9.9252, 78.1198}},
	{"gangtok", Coordinates{27.3389, 88.6065}},

	// Agricultural regions
	{"vidarbha", Coordinates{20.9320, 77.7523}},
	{"marathwada", Coordinates{19.8762, 75.3433}},
	{"bundelkhand", Coordinates{25.4358, 78.5685}},
	{"kutch", Coordinates{23.7337, 69.8597}},
}

// defaultCoordinates is Delhi, used when a location matches nothing.
var defaultCoordinates = Coordinates{28.6139, 77.2090}

// LookupCoordinates maps a free-text location to coordinates. Matching is a
// normalized substring scan in gazetteer order, then a prefix retry on the
// input's first word. Never fails: unmatched locations get the Delhi default
// so the weather panel always renders something.
func LookupCoordinates(location string) Coordinates {
	normalized := normalizePlace(location)
	if normalized == "" {
		return defaultCoordinates
	}

	for _, e := range gazetteer {
		if strings.Contains(normalized, e.name) {
			return e.coords
		}
	}

	first := strings.SplitN(normalized, " ", 2)[0]
	for _, e := range gazetteer {
		if strings.HasPrefix(e.name, first) {
			return e.coords
		}
	}

	return defaultCoordinates
}

// normalizePlace lowercases and collapses commas/whitespace runs to single
// spaces.
func normalizePlace(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	return strings.Join(fields, " ")
}

package geo

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistrictReference pairs a district with a representative coordinate.
type DistrictReference struct {
	Name       string
	Coordinate Coordinate
}

// Order matters: it is the tie-break order for FindNearest. Names follow the
// spelling data.gov.in uses for district filters, including "Osmanabd".
var maharashtraDistricts = [...]DistrictReference{
	{"Ahmednagar", Coordinate{19.0876, 74.7421}},
	{"Akola", Coordinate{20.7136, 77.0091}},
	{"Amravati", Coordinate{20.8449, 77.7539}},
	{"Aurangabad", Coordinate{19.8762, 75.3433}},
	{"Beed", Coordinate{19.2183, 75.7597}},
	{"Bhandara", Coordinate{21.1458, 79.2533}},
	{"Buldhana", Coordinate{20.5244, 76.1761}},
	{"Chandrapur", Coordinate{19.9689, 79.3047}},
	{"Dhule", Coordinate{20.9217, 74.7597}},
	{"Gadchiroli", Coordinate{20.1833, 80.0}},
	{"Gondia", Coordinate{21.4667, 80.2}},
	{"Hingoli", Coordinate{19.7333, 77.1333}},
	{"Jalgaon", Coordinate{21.1458, 75.5625}},
	{"Jalna", Coordinate{19.8427, 75.8789}},
	{"Kolhapur", Coordinate{16.705, 73.7421}},
	{"Latur", Coordinate{18.4088, 76.5244}},
	{"Mumbai City", Coordinate{19.076, 72.8777}},
	{"Mumbai Suburban", Coordinate{19.1136, 72.8697}},
	{"Nagpur", Coordinate{21.1458, 79.0882}},
	{"Nanded", Coordinate{19.1383, 77.3267}},
	{"Nandurbar", Coordinate{21.3833, 74.2667}},
	{"Nashik", Coordinate{19.9975, 73.7898}},
	{"Osmanabd", Coordinate{17.3589, 76.7304}},
	{"Parbhani", Coordinate{19.2683, 76.7597}},
	{"Pimpri-Chinchwad", Coordinate{18.6298, 73.7997}},
	{"Pune", Coordinate{18.5204, 73.8567}},
	{"Raigad", Coordinate{18.5912, 73.4556}},
	{"Ratnagiri", Coordinate{16.9891, 73.3167}},
	{"Sangli", Coordinate{16.8554, 74.5745}},
	{"Satara", Coordinate{17.6726, 73.9258}},
	{"Sindhudurg", Coordinate{15.9281, 73.9597}},
	{"Solapur", Coordinate{17.6599, 75.9064}},
	{"Thane", Coordinate{19.2183, 72.9781}},
	{"Wardha", Coordinate{20.7426, 78.6115}},
	{"Washim", Coordinate{20.1089, 77.5244}},
	{"Yavatmal", Coordinate{20.4183, 78.1364}},
}

// MaharashtraDistricts returns a copy of the built-in reference table.
func MaharashtraDistricts() []DistrictReference {
	out := make([]DistrictReference, len(maharashtraDistricts))
	copy(out, maharashtraDistricts[:])
	return out
}

// Names returns the district names of a table in table order.
func Names(table []DistrictReference) []string {
	names := make([]string, len(table))
	for i, d := range table {
		names[i] = d.Name
	}
	return names
}

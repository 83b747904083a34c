package catalog

import "github.com/playperu/geoquiz/internal/geoquiz"

// Default returns the built-in map catalog.
func Default() *Catalog {
	return New([]Entry{
		{
			ID:               "world",
			Name:             "World",
			Codes:            worldCodes,
			SupportsFlags:    true,
			SupportsCapitals: true,
			CacheKey:         "countries:world",
			Center:           geoquiz.LatLng{Lat: 20, Lng: 0},
			Zoom:             2,
		},
		{
			ID:               "europe",
			Name:             "Europe",
			Codes:            europeCodes,
			SupportsFlags:    true,
			SupportsCapitals: true,
			CacheKey:         "countries:europe",
			Center:           geoquiz.LatLng{Lat: 54, Lng: 15},
			Zoom:             4,
		},
		{
			ID:               "south-america",
			Name:             "South America",
			Codes:            southAmericaCodes,
			SupportsFlags:    true,
			SupportsCapitals: true,
			CacheKey:         "countries:south-america",
			Center:           geoquiz.LatLng{Lat: -15, Lng: -60},
			Zoom:             3,
		},
		{
			ID:               "africa",
			Name:             "Africa",
			Codes:            africaCodes,
			SupportsFlags:    true,
			SupportsCapitals: true,
			CacheKey:         "countries:africa",
			Center:           geoquiz.LatLng{Lat: 2, Lng: 20},
			Zoom:             3,
		},
		{
			ID:               "asia",
			Name:             "Asia",
			Codes:            asiaCodes,
			SupportsFlags:    true,
			SupportsCapitals: true,
			CacheKey:         "countries:asia",
			Center:           geoquiz.LatLng{Lat: 30, Lng: 90},
			Zoom:             3,
		},
		{
			ID:             "us-states",
			Name:           "US States",
			CacheKey:       "features:us-states",
			Center:         geoquiz.LatLng{Lat: 39.8, Lng: -98.6},
			Zoom:           4,
			FeatureURL:     "https://raw.githubusercontent.com/PublicaMundi/MappingAPI/master/data/geojson/us-states.json",
			FeatureCodeKey: "id",
			FeatureNameKey: "name",
		},
	})
}

var europeCodes = []geoquiz.Code{
	"AL", "AD", "AT", "BY", "BE", "BA", "BG", "HR", "CZ", "DK",
	"EE", "FI", "FR", "DE", "GR", "HU", "IS", "IE", "IT", "LV",
	"LI", "LT", "LU", "MT", "MD", "MC", "ME", "NL", "MK", "NO",
	"PL", "PT", "RO", "SM", "RS", "SK", "SI", "ES", "SE", "CH",
	"UA", "GB", "VA",
}

var southAmericaCodes = []geoquiz.Code{
	"AR", "BO", "BR", "CL", "CO", "EC", "GY", "PY", "PE", "SR",
	"UY", "VE",
}

var africaCodes = []geoquiz.Code{
	"DZ", "AO", "BJ", "BW", "BF", "BI", "CM", "CV", "CF", "TD",
	"KM", "CG", "CD", "CI", "DJ", "EG", "GQ", "ER", "SZ", "ET",
	"GA", "GM", "GH", "GN", "GW", "KE", "LS", "LR", "LY", "MG",
	"MW", "ML", "MR", "MU", "MA", "MZ", "NA", "NE", "NG", "RW",
	"ST", "SN", "SC", "SL", "SO", "ZA", "SS", "SD", "TZ", "TG",
	"TN", "UG", "ZM", "ZW",
}

var asiaCodes = []geoquiz.Code{
	"AF", "AM", "AZ", "BH", "BD", "BT", "BN", "KH", "CN", "CY",
	"GE", "IN", "ID", "IR", "IQ", "IL", "JP", "JO", "KZ", "KW",
	"KG", "LA", "LB", "MY", "MV", "MN", "MM", "NP", "KP", "OM",
	"PK", "PH", "QA", "SA", "SG", "KR", "LK", "SY", "TW", "TJ",
	"TH", "TL", "TR", "TM", "AE", "UZ", "VN", "YE",
}

var americasCodes = []geoquiz.Code{
	"AG", "BS", "BB", "BZ", "CA", "CR", "CU", "DM", "DO", "SV",
	"GD", "GT", "HT", "HN", "JM", "MX", "NI", "PA", "KN", "LC",
	"VC", "TT", "US",
}

var oceaniaCodes = []geoquiz.Code{
	"AU", "FJ", "KI", "MH", "FM", "NR", "NZ", "PW", "PG", "WS",
	"SB", "TO", "TV", "VU",
}

// worldCodes is the union of the continental lists plus South America.
var worldCodes = concat(
	europeCodes, africaCodes, asiaCodes, americasCodes, oceaniaCodes,
	southAmericaCodes,
)

func concat(lists ...[]geoquiz.Code) []geoquiz.Code {
	var out []geoquiz.Code
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

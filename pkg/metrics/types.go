package metrics

// algorithmValues encodes algorithm names for the hotsim_settings_algorithm gauge.
var algorithmValues = map[string]float64{
	"arc":           0,
	"optimal":       1,
	"lru":           2,
	"hashicorp-arc": 3,
	"fifo":          4,
	"sieve":         5,
	"2q":            6,
}

func algorithmValue(algorithm string) float64 {
	if v, ok := algorithmValues[algorithm]; ok {
		return v
	}
	return -1
}

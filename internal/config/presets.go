package config

// Presets are grouped by family, a polynomial shape. Seeded presets render a
// known attractor without searching.
var Presets = map[string]map[string]*Config{
	"cubic": {
		"fgoha": seeded(3, 3, "FGOHAXBMCSHYISEHLXJBNCXLDXKFNEXNJCHNNLBOPQDHEYHNUXHLASITVPOJ"),
		"jsyjg": seeded(3, 3, "JSYJGAKFJPPWSCKQKWDNRRLAMGGRCXDTLYXQJWISQSNKFQNGFMRGQORQUASN"),
		"ohbdl": seeded(3, 3, "OHBDLBQNMWRVPVDYVSOVPUCIOXBFNAALOTHQIIJUKGPFVHYFKMKDMQIASHNJ"),
		"neukt": seeded(3, 3, "NEUKTBOJRXPLNDBTVTWOJLJHIEJTNTVQJBJGXBPRQMIQBTJSWNRSVGANVIIN"),
		"poster": with(DefaultConfig(), func(c *Config) {
			c.Render.Iterations = 10_000_000
			c.Render.BurnIn = 100_000
			c.Render.Width, c.Render.Height = 1920, 1080
			c.Search.RequireChaos = true
		}),
		"preview": with(DefaultConfig(), func(c *Config) {
			c.Render.Iterations = 100_000
			c.Render.BurnIn = 1000
			c.Render.Width, c.Render.Height = 400, 400
			c.Search.DensityScale = 12
		}),
	},
	"quadratic": {
		"plane": with(DefaultConfig(), func(c *Config) {
			c.Dimension, c.Degree = 2, 2
			c.Search.MinDensity = 0.05
		}),
		"space": with(DefaultConfig(), func(c *Config) {
			c.Dimension, c.Degree = 3, 2
			c.Search.MinDensity = 0.1
		}),
	},
	"quartic": {
		"hyper": with(DefaultConfig(), func(c *Config) {
			c.Dimension, c.Degree = 4, 4
			c.Render.AllPlanes = true
		}),
	},
}

func seeded(dim, degree int, seed string) *Config {
	return with(DefaultConfig(), func(c *Config) {
		c.Dimension, c.Degree = dim, degree
		c.Seed = seed
	})
}

func with(c *Config, fn func(*Config)) *Config {
	fn(c)
	return c
}

// GetPreset returns a copy, so callers may override fields freely.
func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}

func ListFamilies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

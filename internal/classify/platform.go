package classify

// Platform is an architecture variant of the build. The default variant has
// no directory and accepts any path its kind accepts.
type Platform struct {
	Name  string `yaml:"name"`
	Dir   string `yaml:"dir"`
	Label string `yaml:"label"`
}

// IsDefault reports whether p is the catch-all variant.
func (p Platform) IsDefault() bool {
	return p.Dir == ""
}

// DefaultPlatform is the catch-all variant.
var DefaultPlatform = Platform{Name: "default", Label: "ascend910b"}

// DefaultPlatforms is the built-in variant enumeration.
var DefaultPlatforms = []Platform{
	{Name: "arch35", Dir: "arch35", Label: "ascend950"},
	DefaultPlatform,
}

// orderPlatforms keeps the specific variants in their given order and moves
// the default variant last, adding DefaultPlatform when none is given.
func orderPlatforms(platforms []Platform) []Platform {
	var out []Platform
	fallback, found := DefaultPlatform, false
	for _, p := range platforms {
		if !p.IsDefault() {
			out = append(out, p)
			continue
		}
		if !found {
			fallback, found = p, true
		}
	}
	return append(out, fallback)
}

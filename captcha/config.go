package captcha

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Recognized top-level configuration keys.
const (
	keyImage           = "image"
	keyCreateOptions   = "renderCreateOptions"
	keyParticleOptions = "particleOptions"
	keyDebug           = "debug"
)

// ImageOptions controls the challenge canvas.
type ImageOptions struct {
	Width  int
	Height int
	Font   string  // path to a TTF file; empty selects the built-in face
	PtSize float64 // font size in points
	// Colors are hex strings ("#RGB" or "#RRGGBB").
	BgColor string
	FgColor string
	Lines   int    // number of noise lines drawn across the text
	Format  string // output encoding: "png" (default) or "gif"
}

// ChallengeConfig is the full configuration for a captcha service.
// Build it once at startup via ParseConfig or LoadConfig and treat it
// as immutable; a single value may be shared by any number of
// goroutines.
type ChallengeConfig struct {
	Image ImageOptions

	// CreateOptions is the ordered renderer feature list:
	// method, style, text color, line color. Trailing entries may be
	// omitted.
	CreateOptions []string

	// ParticleOptions is the ordered noise parameter list:
	// particle density, dot size.
	ParticleOptions []int

	// Debug substitutes a fixed, documented challenge string for the
	// random one so round-trips are reproducible in tests.
	Debug bool
}

// ParseConfig validates a raw decoded configuration mapping and
// returns the typed config. Unrecognized keys, or values of the wrong
// shape (e.g. image given as a sequence), yield a *ConfigError naming
// every offending key.
func ParseConfig(raw map[string]interface{}) (*ChallengeConfig, error) {
	var unknown []string
	for k := range raw {
		switch k {
		case keyImage, keyCreateOptions, keyParticleOptions, keyDebug:
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ConfigError{Keys: unknown, Reason: "unrecognized"}
	}

	cfg := &ChallengeConfig{}

	if v, ok := raw[keyImage]; ok {
		m, ok := asMapping(v)
		if !ok {
			return nil, &ConfigError{Keys: []string{keyImage}, Reason: "must be a mapping"}
		}
		if err := parseImageOptions(m, &cfg.Image); err != nil {
			return nil, err
		}
	}

	if v, ok := raw[keyCreateOptions]; ok {
		seq, ok := asSequence(v)
		if !ok {
			return nil, &ConfigError{Keys: []string{keyCreateOptions}, Reason: "must be a sequence"}
		}
		for i, item := range seq {
			s, ok := item.(string)
			if !ok {
				return nil, &ConfigError{
					Keys:   []string{keyCreateOptions},
					Reason: fmt.Sprintf("entry %d must be a string", i),
				}
			}
			cfg.CreateOptions = append(cfg.CreateOptions, s)
		}
	}

	if v, ok := raw[keyParticleOptions]; ok {
		seq, ok := asSequence(v)
		if !ok {
			return nil, &ConfigError{Keys: []string{keyParticleOptions}, Reason: "must be a sequence"}
		}
		for i, item := range seq {
			n, ok := asInt(item)
			if !ok {
				return nil, &ConfigError{
					Keys:   []string{keyParticleOptions},
					Reason: fmt.Sprintf("entry %d must be an integer", i),
				}
			}
			cfg.ParticleOptions = append(cfg.ParticleOptions, n)
		}
	}

	if v, ok := raw[keyDebug]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, &ConfigError{Keys: []string{keyDebug}, Reason: "must be a boolean"}
		}
		cfg.Debug = b
	}

	return cfg, nil
}

// LoadConfig reads a YAML configuration file and validates it with
// ParseConfig.
func LoadConfig(path string) (*ChallengeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	return ParseConfig(raw)
}

func parseImageOptions(m map[string]interface{}, opts *ImageOptions) error {
	var unknown []string
	for k, v := range m {
		ok := true
		switch k {
		case "width":
			opts.Width, ok = asInt(v)
		case "height":
			opts.Height, ok = asInt(v)
		case "font":
			opts.Font, ok = v.(string)
		case "ptsize":
			opts.PtSize, ok = asFloat(v)
		case "bgcolor":
			opts.BgColor, ok = v.(string)
		case "fgcolor":
			opts.FgColor, ok = v.(string)
		case "lines":
			opts.Lines, ok = asInt(v)
		case "format":
			opts.Format, ok = v.(string)
		default:
			unknown = append(unknown, keyImage+"."+k)
			continue
		}
		if !ok {
			return &ConfigError{Keys: []string{keyImage + "." + k}, Reason: "has the wrong type"}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ConfigError{Keys: unknown, Reason: "unrecognized"}
	}
	return nil
}

// asMapping accepts both map shapes yaml.v2 produces: string-keyed at
// the top level, interface-keyed when nested.
func asMapping(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func asSequence(v interface{}) ([]interface{}, bool) {
	seq, ok := v.([]interface{})
	return seq, ok
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

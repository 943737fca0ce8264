package captcha

import (
	"errors"
	"strings"
	"testing"
)

func TestParseConfigValid(t *testing.T) {
	// Nested maps use interface keys, the shape yaml.v2 decodes to.
	cfg, err := ParseConfig(map[string]interface{}{
		"image": map[interface{}]interface{}{
			"width":   240,
			"height":  80,
			"ptsize":  32,
			"bgcolor": "#FFFFFF",
			"fgcolor": "#3399FF",
			"lines":   10,
			"format":  "png",
		},
		"renderCreateOptions": []interface{}{"ttf", "rect", "#3399FF", "#3399FF"},
		"particleOptions":     []interface{}{300, 1},
		"debug":               true,
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.Image.Width != 240 || cfg.Image.Height != 80 {
		t.Errorf("image dimensions = %dx%d, want 240x80", cfg.Image.Width, cfg.Image.Height)
	}
	if cfg.Image.PtSize != 32 {
		t.Errorf("ptsize = %v, want 32", cfg.Image.PtSize)
	}
	if len(cfg.CreateOptions) != 4 || cfg.CreateOptions[0] != "ttf" {
		t.Errorf("create options = %v", cfg.CreateOptions)
	}
	if len(cfg.ParticleOptions) != 2 || cfg.ParticleOptions[0] != 300 {
		t.Errorf("particle options = %v", cfg.ParticleOptions)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		wantKey string
	}{
		{
			name:    "unrecognized key",
			raw:     map[string]interface{}{"FOO": 1},
			wantKey: "FOO",
		},
		{
			name:    "image as sequence",
			raw:     map[string]interface{}{"image": []interface{}{240, 80}},
			wantKey: "image",
		},
		{
			name:    "create options as mapping",
			raw:     map[string]interface{}{"renderCreateOptions": map[interface{}]interface{}{"method": "ttf"}},
			wantKey: "renderCreateOptions",
		},
		{
			name:    "particle options as scalar",
			raw:     map[string]interface{}{"particleOptions": 300},
			wantKey: "particleOptions",
		},
		{
			name:    "particle entry not an integer",
			raw:     map[string]interface{}{"particleOptions": []interface{}{"lots"}},
			wantKey: "particleOptions",
		},
		{
			name:    "debug not a boolean",
			raw:     map[string]interface{}{"debug": "yes"},
			wantKey: "debug",
		},
		{
			name: "unrecognized image key",
			raw: map[string]interface{}{
				"image": map[interface{}]interface{}{"width": 240, "wobble": 3},
			},
			wantKey: "image.wobble",
		},
		{
			name: "image width wrong type",
			raw: map[string]interface{}{
				"image": map[interface{}]interface{}{"width": "wide"},
			},
			wantKey: "image.width",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig(tc.raw)
			if err == nil {
				t.Fatal("expected an error")
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("error type %T, want *ConfigError", err)
			}
			if !strings.Contains(err.Error(), tc.wantKey) {
				t.Errorf("error %q does not name key %q", err.Error(), tc.wantKey)
			}
		})
	}
}

func TestParseConfigNamesAllUnknownKeys(t *testing.T) {
	_, err := ParseConfig(map[string]interface{}{"FOO": 1, "BAR": 2, "debug": false})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, key := range []string{"FOO", "BAR"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name key %q", err.Error(), key)
		}
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Debug || cfg.Image.Width != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

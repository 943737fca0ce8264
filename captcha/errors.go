package captcha

import (
	"fmt"
	"strings"
)

// ConfigError reports configuration keys that are unrecognized or have
// the wrong shape. Keys holds the offending key names (nested keys are
// dotted, e.g. "image.width").
type ConfigError struct {
	Keys   []string
	Reason string
}

func (e *ConfigError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("captcha: configuration key(s) %s: %s", strings.Join(e.Keys, ", "), e.Reason)
	}
	return fmt.Sprintf("captcha: configuration: %s", e.Reason)
}

// RenderConfigError means the rendering backend rejected the supplied
// options before producing any image.
type RenderConfigError struct {
	Option string
	Reason string
}

func (e *RenderConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("captcha: render option %s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("captcha: render options: %s", e.Reason)
}

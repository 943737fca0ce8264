package render

import (
	"fmt"

	"textcaptcha/captcha"
)

type createOptions struct {
	method    string
	style     string
	textColor string
	lineColor string
}

// parseCreateOptions interprets the positional renderCreateOptions
// sequence: method, style, text color, line color. Omitted trailing
// entries take defaults; unknown values are rejected.
func parseCreateOptions(list []string) (*createOptions, error) {
	co := &createOptions{method: MethodTTF, style: StyleDefault}

	for i, v := range list {
		switch i {
		case 0:
			switch v {
			case MethodTTF, MethodPlain:
				co.method = v
			default:
				return nil, &captcha.RenderConfigError{
					Option: "renderCreateOptions",
					Reason: fmt.Sprintf("unknown method %q", v),
				}
			}
		case 1:
			switch v {
			case StyleDefault, StyleRect, StyleBox, StyleEllipse:
				co.style = v
			default:
				return nil, &captcha.RenderConfigError{
					Option: "renderCreateOptions",
					Reason: fmt.Sprintf("unknown style %q", v),
				}
			}
		case 2:
			c, err := pickColor("renderCreateOptions", v, "")
			if err != nil {
				return nil, err
			}
			co.textColor = c
		case 3:
			c, err := pickColor("renderCreateOptions", v, "")
			if err != nil {
				return nil, err
			}
			co.lineColor = c
		default:
			return nil, &captcha.RenderConfigError{
				Option: "renderCreateOptions",
				Reason: fmt.Sprintf("too many entries (%d)", len(list)),
			}
		}
	}

	return co, nil
}

type particleOptions struct {
	density int
	dotSize int
}

// parseParticleOptions interprets the positional particleOptions
// sequence: density, dot size. An absent or empty sequence calibrates
// density to the canvas area.
func parseParticleOptions(list []int, width, height int) (*particleOptions, error) {
	po := &particleOptions{density: width * height / 20, dotSize: 1}

	for i, v := range list {
		switch i {
		case 0:
			if v < 0 {
				return nil, &captcha.RenderConfigError{
					Option: "particleOptions",
					Reason: "density must not be negative",
				}
			}
			po.density = v
		case 1:
			if v < 1 {
				return nil, &captcha.RenderConfigError{
					Option: "particleOptions",
					Reason: "dot size must be positive",
				}
			}
			po.dotSize = v
		default:
			return nil, &captcha.RenderConfigError{
				Option: "particleOptions",
				Reason: fmt.Sprintf("too many entries (%d)", len(list)),
			}
		}
	}

	return po, nil
}

// pickColor validates a hex color, falling back to def when none is
// configured.
func pickColor(option, value, def string) (string, error) {
	if value == "" {
		return def, nil
	}
	if !validHexColor(value) {
		return "", &captcha.RenderConfigError{
			Option: option,
			Reason: fmt.Sprintf("invalid color %q", value),
		}
	}
	return value, nil
}

func validHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

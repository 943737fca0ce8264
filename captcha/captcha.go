// Package captcha issues distorted-text image challenges and verifies
// submitted answers without keeping any server-side challenge state.
// Every challenge is bound to a commitment token of the form
// salt ++ digest(text, salt); the client returns the token together
// with its answer and verification recomputes the digest from the salt
// embedded in the token itself. There is no pending-challenge table to
// fill, expire or clean up.
package captcha

import (
	"github.com/pkg/errors"
)

// RenderedImage is the raster output for a single challenge.
type RenderedImage struct {
	Data     []byte
	MimeType string
}

// Renderer turns challenge text plus style options into raster bytes.
// Implementations own the concrete imaging backend; nothing else in
// this package touches image types.
type Renderer interface {
	Render(text string, cfg *ChallengeConfig) (*RenderedImage, error)
}

// ChallengeResult is everything the caller needs to transport to the
// client: the image, its mime type, and the commitment token the
// client must hand back alongside its answer.
type ChallengeResult struct {
	Image    []byte
	MimeType string
	Token    string
}

// Service creates challenges against one immutable configuration. It
// holds no per-challenge state; any number of CreateChallenge and
// VerifyAnswer calls may run concurrently.
type Service struct {
	cfg      *ChallengeConfig
	renderer Renderer
	gen      Generator
}

// NewService validates cfg once and returns a ready service. Image
// dimensions must be present and positive; everything else is checked
// by the renderer on first use.
func NewService(cfg *ChallengeConfig, r Renderer) (*Service, error) {
	if cfg == nil {
		return nil, &ConfigError{Reason: "configuration is nil"}
	}

	var missing []string
	if cfg.Image.Width <= 0 {
		missing = append(missing, "image.width")
	}
	if cfg.Image.Height <= 0 {
		missing = append(missing, "image.height")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Keys: missing, Reason: "must be a positive integer"}
	}

	if r == nil {
		return nil, errors.New("captcha: renderer is nil")
	}

	return &Service{cfg: cfg, renderer: r}, nil
}

// CreateChallenge draws a fresh challenge, renders it, and commits to
// it. The caller owns transport of all three outputs; render errors
// propagate without any partial image being returned.
func (s *Service) CreateChallenge() (*ChallengeResult, error) {
	text := s.gen.Generate(s.cfg.Debug)

	img, err := s.renderer.Render(text, s.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "render challenge")
	}

	token, _ := Commit(text)

	return &ChallengeResult{
		Image:    img.Data,
		MimeType: img.MimeType,
		Token:    token,
	}, nil
}

// VerifyAnswer reports whether answer matches the challenge the token
// was issued for. See the package-level VerifyAnswer.
func (s *Service) VerifyAnswer(token, answer string) bool {
	return VerifyAnswer(token, answer)
}

// VerifyAnswer checks a submitted answer against a previously issued
// commitment token. Missing, empty or malformed input is an ordinary
// mismatch: the result is always a plain boolean, never an error, so
// failure modes are indistinguishable to a probing client.
func VerifyAnswer(token, answer string) bool {
	if token == "" || answer == "" {
		return false
	}
	return VerifyCommitment(token, answer)
}

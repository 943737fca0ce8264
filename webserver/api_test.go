package webserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"

	"textcaptcha/captcha"
	"textcaptcha/render"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()

	cfg, err := captcha.ParseConfig(map[string]interface{}{
		"image": map[string]interface{}{"width": 120, "height": 48},
		"debug": true,
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	svc, err := captcha.NewService(cfg, render.New())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &WebServer{
		svc: svc,
		sc:  securecookie.New(securecookie.GenerateRandomKey(32), nil),
	}
}

func issueChallenge(t *testing.T, ws *WebServer) *http.Cookie {
	t.Helper()

	rr := httptest.NewRecorder()
	ws.newChallenge(rr, httptest.NewRequest(http.MethodGet, "/api/captcha/new", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("new challenge status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if rr.Body.Len() == 0 {
		t.Error("empty image body")
	}

	for _, c := range rr.Result().Cookies() {
		if c.Name == TokenCookie {
			return c
		}
	}
	t.Fatal("no token cookie set")
	return nil
}

func postVerify(t *testing.T, ws *WebServer, cookie *http.Cookie, body VerifyRequest) bool {
	t.Helper()

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/captcha/verify", bytes.NewReader(payload))
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	ws.verifyAnswer(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rr.Code)
	}
	var resp VerifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("verify response: %v", err)
	}
	return resp.Success
}

func TestChallengeVerifyRoundTrip(t *testing.T) {
	ws := newTestServer(t)
	cookie := issueChallenge(t, ws)

	if !postVerify(t, ws, cookie, VerifyRequest{Answer: captcha.DebugChallenge}) {
		t.Error("correct answer rejected")
	}
	if postVerify(t, ws, cookie, VerifyRequest{Answer: "wrong"}) {
		t.Error("wrong answer accepted")
	}
	// Verification consumes nothing; the same token checks again.
	if !postVerify(t, ws, cookie, VerifyRequest{Answer: captcha.DebugChallenge}) {
		t.Error("repeat verification rejected")
	}
}

func TestVerifyWithoutCookie(t *testing.T) {
	ws := newTestServer(t)

	if postVerify(t, ws, nil, VerifyRequest{Answer: captcha.DebugChallenge}) {
		t.Error("verification succeeded with no token at all")
	}
}

func TestVerifyTokenInBody(t *testing.T) {
	ws := newTestServer(t)

	res, err := ws.svc.CreateChallenge()
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	if !postVerify(t, ws, nil, VerifyRequest{Answer: captcha.DebugChallenge, Token: res.Token}) {
		t.Error("body-carried token rejected")
	}
}

func TestVerifyForgedCookie(t *testing.T) {
	ws := newTestServer(t)

	forged := &http.Cookie{Name: TokenCookie, Value: "not-a-signed-value"}
	if postVerify(t, ws, forged, VerifyRequest{Answer: captcha.DebugChallenge}) {
		t.Error("forged cookie accepted")
	}
}

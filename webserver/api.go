package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// VerifyRequest is the JSON body for /api/captcha/verify. Token is a
// fallback for clients that do not carry cookies; the signed cookie
// wins when both are present.
type VerifyRequest struct {
	Answer string `json:"answer"`
	Token  string `json:"token,omitempty"`
}

// VerifyResponse is returned by /api/captcha/verify.
type VerifyResponse struct {
	Success bool `json:"success"`
}

func (ws *WebServer) newChallenge(w http.ResponseWriter, r *http.Request) {
	res, err := ws.svc.CreateChallenge()
	if err != nil {
		log.WithError(err).Error("API NewChallenge")
		http.Error(w, "failed to create challenge", http.StatusInternalServerError)
		return
	}

	encoded, err := ws.sc.Encode(TokenCookie, res.Token)
	if err != nil {
		log.WithError(err).Error("API NewChallenge: encode cookie")
		http.Error(w, "failed to create challenge", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
	})

	// Correlation ID for the logs only; the token is the real state.
	id := uuid.New().String()
	log.WithFields(log.Fields{"ID": id, "Mime": res.MimeType}).Debug("API NewChallenge")

	w.Header().Set("X-Captcha-Id", id)
	w.Header().Set("Content-Type", res.MimeType)
	w.Write(res.Image)
}

func (ws *WebServer) verifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	token := req.Token
	if c, err := r.Cookie(TokenCookie); err == nil {
		var decoded string
		if err := ws.sc.Decode(TokenCookie, c.Value, &decoded); err == nil {
			token = decoded
		}
	}

	ok := ws.svc.VerifyAnswer(token, req.Answer)
	log.WithField("Success", ok).Debug("API VerifyAnswer")
	json.NewEncoder(w).Encode(VerifyResponse{Success: ok})
}

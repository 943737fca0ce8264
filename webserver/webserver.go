// Package webserver exposes the captcha service over HTTP. The
// commitment token travels in a signed cookie; the server itself keeps
// no record of outstanding challenges.
package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	log "github.com/sirupsen/logrus"

	"textcaptcha/captcha"
)

// TokenCookie carries the commitment token between the challenge
// image response and the verify call.
const TokenCookie = "captcha_token"

type WebServer struct {
	svc     *captcha.Service
	sc      *securecookie.SecureCookie
	httpSvr *http.Server
}

type WebServerArgs struct {
	Service         *captcha.Service
	BindAddr        string
	BindPort        int
	ShutdownChannel <-chan interface{}
	WG              *sync.WaitGroup
}

// Start launches the API in the background. On shutdownChannel close
// the server drains with a 5s grace period and releases the WaitGroup.
func Start(args WebServerArgs) (*WebServer, error) {
	ws := &WebServer{
		svc: args.Service,
		// Key lives for the process only; tokens are already salted
		// commitments, the signature just ties the cookie to this host.
		sc: securecookie.New(securecookie.GenerateRandomKey(32), nil),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/captcha/new", ws.newChallenge).Methods(http.MethodGet)
	router.HandleFunc("/api/captcha/verify", ws.verifyAnswer).Methods(http.MethodPost)
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	httpAddr := fmt.Sprintf("%s:%d", args.BindAddr, args.BindPort)
	ws.httpSvr = &http.Server{
		Handler:      handlers.ProxyHeaders(router),
		Addr:         httpAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.WithField("Addr", httpAddr).Info("Captcha API listening")

	go func() {
		if err := ws.httpSvr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Httpserver: ListenAndServe()")
		}
		log.Info("Httpserver: Shutdown")
	}()

	go func() {
		<-args.ShutdownChannel
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ws.httpSvr.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Httpserver: Shutdown()")
		}
		args.WG.Done()
	}()

	return ws, nil
}

package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"textcaptcha/captcha"
	"textcaptcha/render"
	"textcaptcha/webserver"
)

func main() {
	var (
		configFile string
		bindAddr   string
		bindPort   int
		logDebug   bool
	)
	flag.StringVar(&configFile, "config", "captcha.yaml", "Path to captcha configuration file")
	flag.StringVar(&bindAddr, "bind-addr", "127.0.0.1", "Address on which to bind the API")
	flag.IntVar(&bindPort, "bind-port", 28416, "Port on which to bind the API")
	flag.BoolVar(&logDebug, "debug", false, "Enable debug logging")
	flag.Parse()

	setupLogging(logDebug)

	cfg, err := captcha.LoadConfig(configFile)
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}
	if cfg.Debug {
		log.Warn("Challenge debug mode is on; every challenge is the fixed test string")
	}

	svc, err := captcha.NewService(cfg, render.New())
	if err != nil {
		log.WithError(err).Fatal("Could not create captcha service")
	}

	shutdownChannel := setupCloseChannel()

	var wg sync.WaitGroup
	wg.Add(1)

	if _, err := webserver.Start(webserver.WebServerArgs{
		Service:         svc,
		BindAddr:        bindAddr,
		BindPort:        bindPort,
		ShutdownChannel: shutdownChannel,
		WG:              &wg,
	}); err != nil {
		log.WithError(err).Fatal("Could not start webserver")
	}

	wg.Wait()
	log.Info("Goodbye")
}

func setupCloseChannel() chan interface{} {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownChannel := make(chan interface{})
	go func() {
		<-signalChan
		log.Info("Shutting down")
		close(shutdownChannel)
	}()

	return shutdownChannel
}

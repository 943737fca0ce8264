package main

import (
	log "github.com/sirupsen/logrus"
)

func setupLogging(logDebug bool) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:  true,
		DisableSorting: true,
	})

	if logDebug {
		log.SetLevel(log.DebugLevel)
	}
}

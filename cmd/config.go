package main

import "time"

type Config struct {
	LogLevel            string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true"`
	ClassifierEndpoint  string        `env:"CLASSIFIER_ENDPOINT,required=true"`
	ClassifierTimeout   time.Duration `env:"CLASSIFIER_TIMEOUT,default=5s"`
	ClassifierThreshold float64       `env:"CLASSIFIER_THRESHOLD,default=0.7"`
	DebounceDelay       time.Duration `env:"DEBOUNCE_DELAY,default=300ms"`
	ExtraCensoredWords  string        `env:"EXTRA_CENSORED_WORDS"`
	ChatID              string        `env:"CHAT_ID,required=true"`
	UserID              string        `env:"CHAT_USER,required=true"`
	PeerID              string        `env:"CHAT_PEER,required=true"`
}

// Package logger holds the process-wide structured logger.
package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init builds the production zap logger. Call once at startup before any
// package touches Log.
func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

// InitDevelopment swaps in a human-readable logger. Tests and local runs.
func InitDevelopment() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger. LOG_MODE=development switches to the
// human-readable console encoder.
func New() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("LOG_MODE") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

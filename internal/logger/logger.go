// Package logger builds the zap logger shared by every binary.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production zap logger, or a development one when env is
// "dev" so local output stays human readable.
func New(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

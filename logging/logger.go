package logging

import (
	"go.uber.org/zap"
)

var Logger *zap.Logger = zap.NewNop()

// InitLogger replaces the package logger. The development config logs
// human-readable console lines at debug level; production emits JSON.
func InitLogger(verbose bool) error {
	var err error
	if verbose {
		Logger, err = zap.NewDevelopment()
	} else {
		Logger, err = zap.NewProduction()
	}
	return err
}

func Sync() {
	_ = Logger.Sync()
}

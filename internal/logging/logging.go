package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger: JSON production output, or a colourless
// console encoder at debug level in development
func New(dev bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything, for tests and optional wiring
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

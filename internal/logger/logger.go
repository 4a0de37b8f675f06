package logger

import "go.uber.org/zap"

var log *zap.Logger = zap.NewNop()

// Init builds the process logger: development config when dev is
// true, production JSON otherwise
func Init(dev bool) error {
	var err error
	if dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	return err
}

// L returns the process logger
func L() *zap.Logger {
	return log
}

// Sync flushes buffered log entries
func Sync() {
	_ = log.Sync()
}

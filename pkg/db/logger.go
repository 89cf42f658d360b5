package db

import (
	"gorm.io/gorm/logger"
)

// NewLogger maps the application log level onto gorm's SQL logger. Query
// logging only kicks in at trace level so routine runs stay quiet.
func NewLogger(level string) logger.Interface {
	switch level {
	case "trace":
		return logger.Default.LogMode(logger.Info)
	case "debug":
		return logger.Default.LogMode(logger.Warn)
	default:
		return logger.Default.LogMode(logger.Silent)
	}
}

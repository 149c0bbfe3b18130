package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the application logger. Level comes from CARDLINK_LOG_LEVEL and
// defaults to info.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if lvl, err := logrus.ParseLevel(os.Getenv("CARDLINK_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

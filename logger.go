package marginsdk

import (
	"github.com/sirupsen/logrus"
)

// Logger is an interface of the logger behaviour used by marginsdk,
// with it the user will be able to configure logging level and message format
// at free will. The interface is already satisfied by some logging packages,
// logrus among them, without importing them directly.
type Logger interface {
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
}

func defaultLogger() Logger {

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return log
}

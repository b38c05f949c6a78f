// Package logger provides leveled, object-scoped logging backed by logrus.
// Messages are written synchronously so nothing is lost when a short-lived
// batch run exits right after its last file.
package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 24

func objToString(obj any) (objStr string) {
	switch v := obj.(type) {
	case nil:
		objStr = "NIL"
	case stringer:
		objStr = v.String()
	case string:
		objStr = v
	default:
		objStr = fmt.Sprintf("%T", v)
	}
	if len(objStr) > objWidth {
		objStr = objStr[len(objStr)-objWidth:]
	}
	return objStr
}

// Init sets the global level and the text formatter used for all output.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})
}

func emit(logFn func(...any), object any, message string) {
	logFn(fmt.Sprintf("|%*s| %s", objWidth, objToString(object), message))
}

func Debug(object any, message string) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	emit(logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	emit(logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	emit(logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	emit(logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	emit(logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	emit(logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	emit(logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	emit(logrus.Error, object, fmt.Sprintf(message, args...))
}

func Fatalf(object any, message string, args ...any) {
	emit(logrus.Fatal, object, fmt.Sprintf(message, args...))
}

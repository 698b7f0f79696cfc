// Package log writes structured diagnostics to a daily file under the logs directory.
// Nothing is written unless logs.write is enabled.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcmeskajr-prog/trackall/filesystem"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

// Fields are attached to an entry as structured key/value pairs.
type Fields = logrus.Fields

// Setup opens today's log file and configures format and level from the config.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return nil
}

// Entry is a logger bound to a set of fields. The zero value discards everything.
type Entry struct {
	entry *logrus.Entry
}

// With returns an entry carrying fields, e.g. the provider or owner a message concerns.
func With(fields Fields) Entry {
	if !enabled {
		return Entry{}
	}
	return Entry{entry: logrus.WithFields(fields)}
}

// WithError is a shortcut for With(Fields{"error": err}).
func WithError(err error) Entry {
	if !enabled {
		return Entry{}
	}
	return Entry{entry: logrus.WithError(err)}
}

// With adds fields to e.
func (e Entry) With(fields Fields) Entry {
	if e.entry == nil {
		return e
	}
	return Entry{entry: e.entry.WithFields(fields)}
}

// WithError adds err to e.
func (e Entry) WithError(err error) Entry {
	if e.entry == nil {
		return e
	}
	return Entry{entry: e.entry.WithError(err)}
}

func (e Entry) Errorf(format string, args ...any) {
	if e.entry != nil {
		e.entry.Errorf(format, args...)
	}
}

func (e Entry) Warnf(format string, args ...any) {
	if e.entry != nil {
		e.entry.Warnf(format, args...)
	}
}

func (e Entry) Infof(format string, args ...any) {
	if e.entry != nil {
		e.entry.Infof(format, args...)
	}
}

func (e Entry) Debugf(format string, args ...any) {
	if e.entry != nil {
		e.entry.Debugf(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}

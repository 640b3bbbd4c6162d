// Package log provides the small leveled logger used throughout this
// module. Time/date are omitted by default on the assumption that the
// surrounding process supervisor (systemd, a container log driver) already
// timestamps output; pass WithDate(true) to add it back.
//
// Uses the systemd syslog-style numeric prefixes documented at
// https://www.freedesktop.org/software/systemd/man/sd-daemon.html so this
// library's output composes cleanly with an embedding application's own
// logging.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

var withDate bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	debugPrefix = "<7>[DEBUG]   "
	infoPrefix  = "<6>[INFO]    "
	warnPrefix  = "<4>[WARNING] "
	errPrefix   = "<3>[ERROR]   "
)

var (
	debugLog = log.New(DebugWriter, debugPrefix, 0)
	infoLog  = log.New(InfoWriter, infoPrefix, 0)
	warnLog  = log.New(WarnWriter, warnPrefix, log.Lshortfile)
	errLog   = log.New(ErrWriter, errPrefix, log.Llongfile)

	debugTimeLog = log.New(DebugWriter, debugPrefix, log.LstdFlags)
	infoTimeLog  = log.New(InfoWriter, infoPrefix, log.LstdFlags)
	warnTimeLog  = log.New(WarnWriter, warnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog   = log.New(ErrWriter, errPrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel silences all levels below lvl ("debug", "info", "warn", "err").
func SetLevel(lvl string) {
	switch lvl {
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
	default:
		fmt.Fprintf(os.Stderr, "pkg/log: unknown level %q, using debug\n", lvl)
	}
}

// WithDate turns date/time prefixing on or off.
func WithDate(enabled bool) { withDate = enabled }

func emit(w io.Writer, plain, timed *log.Logger, v ...interface{}) {
	if w == io.Discard {
		return
	}
	out := fmt.Sprint(v...)
	if withDate {
		timed.Output(2, out)
	} else {
		plain.Output(2, out)
	}
}

func emitf(w io.Writer, plain, timed *log.Logger, format string, v ...interface{}) {
	if w == io.Discard {
		return
	}
	out := fmt.Sprintf(format, v...)
	if withDate {
		timed.Output(2, out)
	} else {
		plain.Output(2, out)
	}
}

func Debug(v ...interface{}) { emit(DebugWriter, debugLog, debugTimeLog, v...) }
func Info(v ...interface{})  { emit(InfoWriter, infoLog, infoTimeLog, v...) }
func Warn(v ...interface{})  { emit(WarnWriter, warnLog, warnTimeLog, v...) }
func Error(v ...interface{}) { emit(ErrWriter, errLog, errTimeLog, v...) }

func Debugf(format string, v ...interface{}) { emitf(DebugWriter, debugLog, debugTimeLog, format, v...) }
func Infof(format string, v ...interface{})  { emitf(InfoWriter, infoLog, infoTimeLog, format, v...) }
func Warnf(format string, v ...interface{})  { emitf(WarnWriter, warnLog, warnTimeLog, format, v...) }
func Errorf(format string, v ...interface{}) { emitf(ErrWriter, errLog, errTimeLog, format, v...) }

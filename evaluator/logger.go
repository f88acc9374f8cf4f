package evaluator

import "log"

// Logger receives evaluation output. Infof carries the accuracy summary;
// Debugf carries wrong-match detail and raw diagnostic statistics.
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

type stdLogger struct {
	debug bool
}

func (l stdLogger) Infof(format string, args ...interface{}) {
	log.Printf("INFO "+format, args...)
}

func (l stdLogger) Debugf(format string, args ...interface{}) {
	if l.debug {
		log.Printf("DEBUG "+format, args...)
	}
}

// StdLogger returns a logger backed by the standard log package.
// When debug is false, Debugf output is suppressed.
func StdLogger(debug bool) Logger {
	return stdLogger{debug: debug}
}

// FuncLogger adapts printf-style functions to Logger. A nil func drops
// that level.
type FuncLogger struct {
	Info  func(format string, args ...interface{})
	Debug func(format string, args ...interface{})
}

func (f FuncLogger) Infof(format string, args ...interface{}) {
	if f.Info != nil {
		f.Info(format, args...)
	}
}

func (f FuncLogger) Debugf(format string, args ...interface{}) {
	if f.Debug != nil {
		f.Debug(format, args...)
	}
}

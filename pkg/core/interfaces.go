package core

// Logger interface for trace logging
type Logger interface {
	Printf(format string, args ...interface{})
}

package outbound

// Logger defines the interface for structured logging operations.
// Implementations must be safe for concurrent use by detector goroutines.
type Logger interface {
	// logs messages with optional key/value arguments
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

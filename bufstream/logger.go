package bufstream

// Logger is the leveled logging contract BufferedStream uses for its own
// lifecycle events (open/close, readiness transitions, producer stalls). It
// mirrors the small Debug/Info/Warn/Error surface used across this codebase's
// ambient stack (see internal/logging) so the core does not have to import a
// concrete logging package. A nil Logger is replaced with a no-op one.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

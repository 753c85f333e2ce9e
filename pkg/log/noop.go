package log

// Noop implements Logger by discarding everything.
type Noop struct{}

// NewNoop creates a no-op logger.
func NewNoop() Noop {
	return Noop{}
}

func (Noop) Debug(msg string, fields ...Field) {}

func (Noop) Info(msg string, fields ...Field) {}

func (Noop) Warn(msg string, fields ...Field) {}

func (Noop) Error(msg string, fields ...Field) {}

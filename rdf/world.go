package rdf

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogLevel is the syslog-style severity scale a Logger callback receives.
type LogLevel uint8

const (
	LogEmerg LogLevel = iota
	LogAlert
	LogCrit
	LogErr
	LogWarning
	LogNotice
	LogInfo
	LogDebug
)

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogEmerg, LogAlert, LogCrit:
		return logrus.FatalLevel
	case LogErr:
		return logrus.ErrorLevel
	case LogWarning:
		return logrus.WarnLevel
	case LogNotice, LogInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Logger receives every warning raised by a Reader/Writer/Model, including
// ones fully recovered in lax mode. domain names the subsystem ("reader",
// "writer", "model"...), fields carries structured key/value annotations,
// and message is the human-readable text.
type Logger interface {
	Log(domain string, level LogLevel, fields map[string]any, message string)
}

// NullLogger discards every message. It is the World's default so the
// library stays silent unless a caller opts in.
type NullLogger struct{}

func (NullLogger) Log(string, LogLevel, map[string]any, string) {}

// LogrusLogger adapts a *logrus.Logger to the Logger interface, attaching
// domain and every field as structured logrus fields before logging at the
// mapped level.
type LogrusLogger struct {
	Entry *logrus.Logger
}

// NewLogrusLogger wraps l, or logrus.StandardLogger() if l is nil.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{Entry: l}
}

func (l *LogrusLogger) Log(domain string, level LogLevel, fields map[string]any, message string) {
	entry := l.Entry.WithField("domain", domain)
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	entry.Log(level.logrusLevel(), message)
}

// Limits bounds parser resource usage for untrusted input.
type Limits struct {
	// StackBytes bounds the parser's explicit frame stack. Zero uses
	// DefaultStackBytes.
	StackBytes int
	// MaxAnonDepth bounds nested [ ... ]/( ... ) blank contexts. Zero uses
	// DefaultMaxAnonDepth.
	MaxAnonDepth int
}

// DefaultStackBytes and DefaultMaxAnonDepth are the out-of-the-box limits,
// chosen to bound a malicious or accidental deep-nesting input to a small,
// fixed amount of memory.
const (
	DefaultStackBytes   = 8 * 1024
	DefaultMaxAnonDepth = 256
)

func (l Limits) normalized() Limits {
	if l.StackBytes <= 0 {
		l.StackBytes = DefaultStackBytes
	}
	if l.MaxAnonDepth <= 0 {
		l.MaxAnonDepth = DefaultMaxAnonDepth
	}
	return l
}

// World is the process-wide (per-thread-discipline) shared root: it owns
// the default interner, the default logger, and a monotonic blank-node
// generator. A World is not truly global — it is an explicit handle passed
// to NewReader/NewModel — and two Worlds share no state.
type World struct {
	Interner *NodeSet
	Logger   Logger
	Limits   Limits

	blankCounter uint64
}

// NewWorld constructs a World with a fresh interner, a NullLogger, and
// default Limits.
func NewWorld() *World {
	return &World{
		Interner: NewNodeSet(),
		Logger:   NullLogger{},
		Limits:   Limits{}.normalized(),
	}
}

// WithLogger and WithLimits return w for chaining after adjusting a field.
func (w *World) WithLogger(l Logger) *World {
	w.Logger = l
	return w
}

func (w *World) WithLimits(l Limits) *World {
	w.Limits = l.normalized()
	return w
}

// NextBlankLabel returns the next reader-generated blank label ("b1",
// "b2", ...), distinct from user-written labels. The counter is monotonic
// and safe for concurrent callers, though one Reader per goroutine avoids
// contention.
func (w *World) NextBlankLabel() string {
	n := atomic.AddUint64(&w.blankCounter, 1)
	return "b" + itoa(n)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (w *World) log(domain string, level LogLevel, fields map[string]any, message string) {
	if w == nil || w.Logger == nil {
		return
	}
	w.Logger.Log(domain, level, fields, message)
}

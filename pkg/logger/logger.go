// Package logger holds the process-wide zerolog logger. main builds it once
// from configuration; everything else receives it by injection or calls Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options are read by the first Init call only.
type Options struct {
	// Level name as accepted by ParseLevel.
	Level string
	// Pretty writes human-readable lines instead of JSON (ENV=development).
	Pretty bool
	// Service is stamped on every entry under "service".
	Service string
	// Output is os.Stdout when nil.
	Output io.Writer
}

var (
	mu    sync.Mutex
	built bool
	root  zerolog.Logger
)

// Init builds the root logger and sets the global level. Later calls return
// the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if built {
		return root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := ParseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	root = newLogger(opts, level)
	built = true
	return root
}

func newLogger(opts Options, level zerolog.Level) zerolog.Logger {
	var w io.Writer = os.Stdout
	if opts.Output != nil {
		w = opts.Output
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	return fields.Caller().Logger()
}

// Get returns the root logger. It panics before Init so a missing Init shows
// up at startup rather than as silently dropped logs.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !built {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Reset forgets the root logger and restores the global level. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	built = false
	root = zerolog.Logger{}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level. "warning" is accepted
// as an alias; empty or unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return level
}

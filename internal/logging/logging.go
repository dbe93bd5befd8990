// Package logging builds the zap logger shared by the CLI and libraries.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and destination.
type Options struct {
	// Level is a zap level name. Empty means warn.
	Level string
	// Verbose lowers the level to info.
	Verbose bool
	// Debug lowers the level to debug and adds caller information.
	Debug bool
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a console logger. Debug wins over Verbose, and both win over
// Level only when they lower it.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		if err := level.Set(s); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", s, err)
		}
	}
	if opts.Verbose && level > zapcore.InfoLevel {
		level = zapcore.InfoLevel
	}
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), level)

	var zopts []zap.Option
	if opts.Debug {
		zopts = append(zopts, zap.AddCaller())
	}
	return zap.New(core, zopts...), nil
}

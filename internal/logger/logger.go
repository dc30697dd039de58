package logger

import (
	"os"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// SetupGlobal configures the logger and installs it as the package level
// logger used through zerolog/log
func SetupGlobal(dev bool) zerolog.Logger {
	logger := Setup(dev)
	log.Logger = logger
	return logger
}

// BuildMessages logs esbuild diagnostics at level, with the source location
// when esbuild reports one
func BuildMessages(logger zerolog.Logger, level zerolog.Level, msg string, messages []api.Message) {
	for _, m := range messages {
		evt := logger.WithLevel(level).Str("text", m.Text)
		if m.PluginName != "" {
			evt = evt.Str("plugin", m.PluginName)
		}
		if loc := m.Location; loc != nil {
			evt = evt.Str("file", loc.File).Int("line", loc.Line).Int("column", loc.Column)
		}
		for _, note := range m.Notes {
			evt = evt.Str("note", note.Text)
		}
		evt.Msg(msg)
	}
}

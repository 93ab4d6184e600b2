package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const timeFmt = "15:04:05"

// New returns a console logger writing to out. Debug events are enabled
// when verbose is set.
func New(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFmt,
		NoColor:    true,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Since logs the elapsed time of a finished operation at debug level.
func Since(log *zerolog.Logger, op string, start time.Time) {
	log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("done")
}

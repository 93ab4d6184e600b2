// Package cli implements the jsonw command.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/reoring/jsonwriter/internal/logging"
	"github.com/reoring/jsonwriter/transcode"
)

// Env is the process environment the command runs in.
type Env struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command line args (without the program name) and
// returns the exit code.
func Run(ctx context.Context, env Env, args []string) int {
	if len(args) < 1 {
		usage(env.Stderr)
		return 2
	}
	switch args[0] {
	case "compact":
		return convertCmd(ctx, env, "compact", args[1:], transcode.JSON)
	case "yaml":
		return convertCmd(ctx, env, "yaml", args[1:], transcode.YAML)
	case "help", "-h", "--help":
		usage(env.Stdout)
		return 0
	default:
		usage(env.Stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "jsonw: stream documents out as compact JSON\n\nUsage:\n  jsonw compact [-in file] [-o file] [-flush bytes] [-v]\n  jsonw yaml    [-in file] [-o file] [-flush bytes] [-v]\n\nNotes:\n  - Multiple top-level values (or YAML documents) are written one per line.\n  - Output is flushed only between top-level array elements or values.")
}

func convertCmd(ctx context.Context, env Env, name string, args []string, open func(io.Reader) transcode.Source) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var in, out string
	var flushBytes int
	var verbose bool
	fs.StringVar(&in, "in", "", "input file (default stdin)")
	fs.StringVar(&out, "o", "", "output file (default stdout)")
	fs.IntVar(&flushBytes, "flush", transcode.DefaultFlushBytes, "buffered bytes that trigger a flush")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logging.New(env.Stderr, verbose)
	defer logging.Since(&log, name, time.Now())

	opt := transcode.Options{FlushBytes: flushBytes, Logger: &log}
	stats, err := convert(ctx, env, in, out, open, opt)
	if err != nil {
		log.Error().Err(err).Str("in", in).Str("out", out).Msg(name + " failed")
		return 1
	}
	log.Debug().Int("values", stats.Values).Int("flushes", stats.Flushes).Int64("bytes", stats.Bytes).Msg(name)
	return 0
}

func convert(ctx context.Context, env Env, in, out string, open func(io.Reader) transcode.Source, opt transcode.Options) (stats transcode.Stats, err error) {
	r := env.Stdin
	if in != "" && in != "-" {
		f, ferr := env.Fs.Open(in)
		if ferr != nil {
			return stats, errors.Wrap(ferr, "open input")
		}
		defer f.Close()
		r = f
	}

	w := env.Stdout
	if out != "" && out != "-" {
		f, ferr := env.Fs.Create(out)
		if ferr != nil {
			return stats, errors.Wrap(ferr, "create output")
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "close output")
			}
		}()
		w = f
	}

	bw := bufio.NewWriter(w)
	stats, err = transcode.Stream(ctx, bw, open(bufio.NewReader(r)), opt)
	if err != nil {
		return stats, err
	}
	if stats.Values > 0 {
		_ = bw.WriteByte('\n')
	}
	return stats, errors.Wrap(bw.Flush(), "write output")
}

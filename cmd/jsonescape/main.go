// Command jsonescape writes files, or standard input, as JSON string literals.
//
//	jsonescape [-kernel name] [-lines] [-j n] [-v] [file or pattern ...]
//
// Each input becomes one literal on its own output line, in argument order.
// With -lines every input line becomes its own literal instead. Arguments
// containing glob meta characters are expanded, "**" matching any number of
// directories, e.g. 'src/**/*.ts'.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/mnightingale/jsonescape"
)

type config struct {
	kernel  string
	lines   bool
	jobs    int
	verbose bool
	files   []string
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("jsonescape", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.kernel, "kernel", "", "escape kernel to use (default: widest supported)")
	fs.BoolVar(&cfg.lines, "lines", false, "escape every input line as its own literal")
	fs.IntVar(&cfg.jobs, "j", runtime.GOMAXPROCS(0), "number of files escaped concurrently")
	fs.BoolVar(&cfg.verbose, "v", false, "log debug information")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}
	cfg.files = fs.Args()
	return cfg, nil
}

// expandPatterns replaces every glob pattern in args by the files it matches,
// sorted, leaving plain paths alone.
func expandPatterns(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", arg)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	esc, err := newEscaper(cfg.kernel)
	if err != nil {
		log.Error("selecting kernel", "kernel", cfg.kernel, "err", err)
		return 2
	}
	log.Debug("escaper ready",
		"kernel", esc.Name(),
		"width", esc.Width(),
		"available", jsonescape.Kernels(),
		"cpu", jsonescape.CPUFeatures(),
	)

	files, err := expandPatterns(cfg.files)
	if err != nil {
		log.Error("expanding arguments", "err", err)
		return 2
	}
	cfg.files = files

	var outputs [][]byte
	if len(cfg.files) == 0 {
		out, err := escapeReader(esc, stdin, cfg.lines)
		if err != nil {
			log.Error("reading stdin", "err", err)
			return 1
		}
		outputs = [][]byte{out}
	} else {
		outputs, err = escapeFiles(ctx, esc, cfg)
		if err != nil {
			log.Error("escaping files", "err", err)
			return 1
		}
	}

	for _, out := range outputs {
		if _, err := stdout.Write(out); err != nil {
			log.Error("writing output", "err", err)
			return 1
		}
	}
	return 0
}

func newEscaper(name string) (*jsonescape.Escaper, error) {
	if name == "" {
		name = jsonescape.Kernel()
	}
	return jsonescape.New(name)
}

// escapeFiles escapes every file concurrently, keeping argument order in the
// returned outputs.
func escapeFiles(ctx context.Context, esc *jsonescape.Escaper, cfg config) ([][]byte, error) {
	outputs := make([][]byte, len(cfg.files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.jobs)
	for i, name := range cfg.files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()

			out, err := escapeReader(esc, f, cfg.lines)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func escapeReader(esc *jsonescape.Escaper, r io.Reader, lines bool) ([]byte, error) {
	if !lines {
		var out bytes.Buffer
		enc := esc.NewEncoder(&out)
		if _, err := io.Copy(enc, r); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var out []byte
	for len(data) > 0 {
		line, rest, _ := bytes.Cut(data, []byte("\n"))
		out = append(esc.AppendBytes(out, line), '\n')
		data = rest
	}
	return out, nil
}

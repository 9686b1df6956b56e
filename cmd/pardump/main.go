package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/reoring/pardump"
	"github.com/reoring/pardump/i18n"
	"github.com/reoring/pardump/render"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "render":
		err = renderCmd(os.Args[2:])
	case "graph":
		err = graphCmd(os.Args[2:])
	case "check":
		err = checkCmd(os.Args[2:])
	case "stats":
		err = statsCmd(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `pardump: reflection schema dump formatter

Usage:
  pardump render -in <dump> [-format text|html|ansi|auto] [-out <file>]
  pardump graph  -in <dump> -out <file.dot>
  pardump check  -in <dump>
  pardump stats  -in <dump>

Common flags:
  -in <path>     Dump file (JSON, or YAML with -yaml or a .yaml/.yml name)
  -yaml          Force YAML input
  -max-bytes <n> Reject inputs larger than n bytes
  -lang en|ja    Language of decode error messages
  -v             Verbose logging
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	in       string
	yaml     bool
	maxBytes int64
	lang     string
	verbose  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "dump file")
	fs.BoolVar(&c.yaml, "yaml", false, "read YAML instead of JSON")
	fs.Int64Var(&c.maxBytes, "max-bytes", 0, "maximum input size (0 = unlimited)")
	fs.StringVar(&c.lang, "lang", "en", "error message language (en|ja)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

func (c *commonFlags) setup() (*zap.Logger, error) {
	if c.in == "" {
		return nil, fmt.Errorf("-in is required")
	}
	i18n.SetLanguage(c.lang)
	log, err := newLogger(c.verbose)
	if err != nil {
		return nil, err
	}
	pardump.SetLogger(log)
	return log, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

// load reads and decodes the dump named by c.in.
func (c *commonFlags) load(ctx context.Context, log *zap.Logger) (*pardump.Dump, error) {
	start := time.Now()
	data, err := os.ReadFile(c.in)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var src pardump.Source
	ext := strings.ToLower(filepath.Ext(c.in))
	if c.yaml || ext == ".yaml" || ext == ".yml" {
		src = pardump.YAMLBytes(data)
	} else {
		src = pardump.JSONBytes(data)
	}
	d, err := pardump.DecodeDump(ctx, src, pardump.DecodeOpt{MaxBytes: c.maxBytes})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.in, err)
	}
	log.Info("dump loaded",
		zap.String("path", c.in),
		zap.Int("bytes", len(data)),
		zap.Int("structs", len(d.Structs)),
		zap.Int("enums", len(d.Enums)),
		zap.Duration("elapsed", time.Since(start)))
	return d, nil
}

func renderCmd(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var c commonFlags
	c.register(fs)
	format := fs.String("format", "text", "output format: text, html, ansi or auto")
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := c.load(context.Background(), log)
	if err != nil {
		return err
	}

	f := *format
	if f == "auto" {
		f = "text"
		if *out == "" && term.IsTerminal(int(os.Stdout.Fd())) {
			f = "ansi"
		}
	}

	// Render fully before touching the destination so a failure never
	// leaves a partial file behind.
	var buf bytes.Buffer
	switch f {
	case "text":
		err = render.Text(&buf, d)
	case "html":
		err = render.HTML(&buf, d)
	case "ansi":
		err = render.ANSI(&buf, d, render.ANSIOptions{ForceColor: *out == "" && term.IsTerminal(int(os.Stdout.Fd()))})
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Debug("rendered", zap.String("format", f), zap.Int("bytes", buf.Len()))
	return writeOutput(*out, buf.Bytes())
}

func graphCmd(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	var c commonFlags
	c.register(fs)
	out := fs.String("out", "", "output DOT file (default stdout)")
	_ = fs.Parse(args)

	log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := c.load(context.Background(), log)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.DOT(&buf, d, "types"); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	g := render.TypeGraph(d)
	log.Info("type graph", zap.Int("nodes", len(g.Nodes)), zap.Int("edges", len(g.Edges)))
	return writeOutput(*out, buf.Bytes())
}

func checkCmd(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var c commonFlags
	c.register(fs)
	_ = fs.Parse(args)

	log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := c.load(context.Background(), log)
	if err != nil {
		return err
	}
	members := 0
	for _, s := range d.Structs {
		members += len(s.Members)
	}
	fmt.Printf("%s (build %s): %d structs, %d members, %d enums\n",
		strings.ToUpper(d.Game), d.Build, len(d.Structs), members, len(d.Enums))
	return nil
}

func statsCmd(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var c commonFlags
	c.register(fs)
	_ = fs.Parse(args)

	log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := c.load(context.Background(), log)
	if err != nil {
		return err
	}
	writeStats(os.Stdout, d)
	return nil
}

// writeStats prints member counts per type and the dangling references.
func writeStats(w io.Writer, d *pardump.Dump) {
	counts := make(map[pardump.MemberType]int)
	for _, s := range d.Structs {
		for _, m := range s.Members {
			pardump.WalkMembers(m, func(m pardump.Member) { counts[m.Info().Type]++ })
		}
	}
	types := make([]pardump.MemberType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	fmt.Fprintln(w, "member types:")
	for _, t := range types {
		fmt.Fprintf(w, "  %-10s %d\n", t, counts[t])
	}

	dangling := danglingRefs(d)
	fmt.Fprintf(w, "dangling references: %d\n", len(dangling))
	for _, n := range dangling {
		fmt.Fprintf(w, "  %s\n", n)
	}
}

// danglingRefs lists referenced type names with no definition in d.
func danglingRefs(d *pardump.Dump) []string {
	defined := make(map[uint32]bool)
	for _, s := range d.Structs {
		defined[s.Name.Hash()] = true
	}
	for _, e := range d.Enums {
		defined[e.Name.Hash()] = true
	}
	missing := make(map[uint32]string)
	note := func(n pardump.Name) {
		if !defined[n.Hash()] {
			missing[n.Hash()] = n.String()
		}
	}
	for _, s := range d.Structs {
		if s.Base != nil {
			note(s.Base.Name)
		}
		for _, m := range s.Members {
			pardump.WalkMembers(m, func(m pardump.Member) {
				switch v := m.(type) {
				case *pardump.EnumMember:
					note(v.EnumName)
				case *pardump.StructMember:
					if v.StructName != nil {
						note(*v.StructName)
					}
				}
			})
		}
	}
	out := make([]string, 0, len(missing))
	for _, n := range missing {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"text/template"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dlclark/regexp2"
	"github.com/quasilyte/rxbuild"
	"github.com/quasilyte/rxbuild/dsl"
)

// Following the grep tool convention.
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

const (
	defaultEngine       = "regexp"
	defaultFormat       = `{{.Pattern}}`
	defaultGroupsFormat = `{{.Name}}={{.Index}}`
)

const description = `Build a regular expression from a builder expression.

The expression is a list of Go-like statements:

  proto := group(lit("http"), chars("s").optional())
  start; proto; lit("://"); group(chars(".").addclass("word").many()); end

Use "-" to read the expression from stdin and "@name" to use
a pattern from the config file.

Exit status:
  0 if the pattern is built and accepted by the engine
  1 if the engine rejected the pattern
  2 if error occurred`

type arguments struct {
	Expr string `arg:"" optional:"" help:"Builder expression, @name of a configured pattern or - for stdin."`

	File   string `short:"f" help:"Read the builder expression from a file."`
	Config string `short:"c" help:"YAML config file with defaults and named patterns." env:"RXBUILD_CONFIG"`

	Engine  string        `short:"e" help:"Engine that checks the pattern: regexp, regexp2 or none."`
	Flags   string        `help:"Document flags, like \"im\" or \"CaseInsensitive,Multiline\"."`
	Timeout time.Duration `help:"regexp2 match timeout."`

	Groups       bool   `short:"g" help:"Print the capture index of every named group."`
	Format       string `help:"Pattern output format, using the syntax of Go templates."`
	GroupsFormat string `name:"groups-format" help:"Group output format, using the syntax of Go templates."`

	NoColor    bool   `name:"no-color" help:"Disable colored output."`
	NameColor  string `name:"color-name" help:"{{.Name}} text color." default:"dark-magenta" env:"RXBUILD_COLOR_NAME"`
	IndexColor string `name:"color-index" help:"{{.Index}} text color." default:"dark-green" env:"RXBUILD_COLOR_INDEX"`
	ErrorColor string `name:"color-error" help:"Rejected pattern text color." default:"dark-red" env:"RXBUILD_COLOR_ERROR"`

	CPUProfile string `name:"cpuprofile" help:"Write CPU profile to the specified file."`
	MemProfile string `name:"memprofile" help:"Write memory profile to the specified file."`

	Verbose bool `short:"v" help:"Turn on additional debug logging."`
}

func main() {
	exitCode, err := mainNoExit(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitCode)
}

func mainNoExit(argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	var args arguments
	parser, err := kong.New(&args,
		kong.Name("rxbuild"),
		kong.Description(description),
		kong.Writers(stdout, stderr),
		kong.UsageOnError())
	if err != nil {
		return exitError, err
	}
	if _, err := parser.Parse(argv); err != nil {
		return exitError, err
	}

	level := slog.LevelInfo
	if args.Verbose {
		level = slog.LevelDebug
	}

	p := &program{
		args:   args,
		stdin:  stdin,
		stdout: stdout,
		log:    slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"validate flags", p.validateFlags},
		{"load config", p.loadConfig},
		{"start profiling", p.startProfiling},
		{"read expression", p.readExpression},
		{"parse expression", p.parseExpression},
		{"compile pattern", p.compilePattern},
		{"compile output format", p.compileOutputFormat},
		{"print pattern", p.printPattern},
		{"finish profiling", p.finishProfiling},
	}

	for _, step := range steps {
		p.log.Debug("starting step", "step", step.name)
		if err := step.fn(); err != nil {
			return exitError, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if p.rejected != nil {
		return exitRejected, nil
	}
	return exitOK, nil
}

type program struct {
	args arguments

	stdin  io.Reader
	stdout io.Writer
	log    *slog.Logger

	config *config
	flags  []rxbuild.Flag

	src    string
	result *dsl.Result

	pattern  string
	rejected error

	colors         palette
	outputTemplate *template.Template
	groupsTemplate *template.Template

	cpuProfile bytes.Buffer
}

func (p *program) validateFlags() error {
	if p.args.Expr == "" && p.args.File == "" {
		return errors.New("expression can't be empty")
	}
	if p.args.Expr != "" && p.args.File != "" {
		return errors.New("expression and --file are mutually exclusive")
	}

	colors, err := newPalette(&p.args)
	if err != nil {
		return err
	}
	p.colors = colors

	if p.args.Timeout < 0 {
		return fmt.Errorf("timeout: negative value %s", p.args.Timeout)
	}

	return nil
}

// loadConfig reads the optional config file and fills
// the arguments that were not set on the command line.
func (p *program) loadConfig() error {
	cfg := &config{}
	if p.args.Config != "" {
		var err error
		cfg, err = loadConfig(p.args.Config)
		if err != nil {
			return err
		}
		p.log.Debug("loaded config", "path", p.args.Config, "patterns", len(cfg.Patterns))
	}
	cfg.applyDefaults()
	p.config = cfg

	if p.args.Engine == "" {
		p.args.Engine = cfg.Engine
	}
	if p.args.Flags == "" {
		p.args.Flags = cfg.Flags
	}
	if p.args.Format == "" {
		p.args.Format = cfg.Format
	}
	if p.args.GroupsFormat == "" {
		p.args.GroupsFormat = cfg.GroupsFormat
	}
	if p.args.Timeout == 0 {
		p.args.Timeout = cfg.Timeout
	}

	switch p.args.Engine {
	case "regexp", "regexp2", "none":
		// OK.
	default:
		return fmt.Errorf("engine: unexpected value %q", p.args.Engine)
	}

	flags, err := rxbuild.ParseFlags(p.args.Flags)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	p.flags = flags

	return nil
}

func (p *program) startProfiling() error {
	if p.args.CPUProfile == "" {
		return nil
	}

	if err := pprof.StartCPUProfile(&p.cpuProfile); err != nil {
		return fmt.Errorf("could not start CPU profile: %w", err)
	}

	return nil
}

func (p *program) readExpression() error {
	switch {
	case p.args.File != "":
		data, err := os.ReadFile(p.args.File)
		if err != nil {
			return err
		}
		p.src = string(data)
	case p.args.Expr == "-":
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		p.src = string(data)
	case strings.HasPrefix(p.args.Expr, "@"):
		name := strings.TrimPrefix(p.args.Expr, "@")
		pat, ok := p.config.Patterns[name]
		if !ok {
			return fmt.Errorf("pattern %q is not defined in the config", name)
		}
		p.src = pat.Expr
		if pat.Flags != "" {
			// Pattern flags are added to the document flags.
			flags, err := rxbuild.ParseFlags(pat.Flags)
			if err != nil {
				return fmt.Errorf("pattern %q flags: %w", name, err)
			}
			p.flags = append(p.flags, flags...)
		}
	default:
		p.src = p.args.Expr
	}

	p.log.Debug("expression", "src", p.src, "flags", p.flags)
	return nil
}

func (p *program) parseExpression() error {
	result, err := dsl.Parse(p.src, p.flags...)
	if err != nil {
		return err
	}
	for _, d := range result.Duplicates {
		p.log.Warn("duplicated binding", "name", d.Name, "of", d.Of, "line", d.Line)
	}
	p.result = result
	return nil
}

func (p *program) compilePattern() error {
	b := p.result.Builder

	var err error
	switch p.args.Engine {
	case "regexp":
		_, err = b.Compile()
	case "regexp2":
		_, err = rxbuild.CompileWith[*regexp2.Regexp](b, rxbuild.Regexp2Engine{MatchTimeout: p.args.Timeout})
	case "none":
		b.Reindex()
	}

	pattern, renderErr := b.Render()
	if renderErr != nil {
		return renderErr
	}
	p.pattern = pattern

	if err != nil {
		if !errors.Is(err, rxbuild.ErrCompileFailure) {
			return err
		}
		p.rejected = err
		p.log.Error("pattern rejected", "engine", p.args.Engine, "error", err)
	}
	return nil
}

func (p *program) compileOutputFormat() error {
	var err error
	p.outputTemplate, err = template.New("output-format").Parse(p.args.Format)
	if err != nil {
		return err
	}
	p.groupsTemplate, err = template.New("groups-format").Parse(p.args.GroupsFormat)
	if err != nil {
		return err
	}
	return nil
}

func (p *program) printPattern() error {
	groups := p.result.Groups()
	s, err := renderPattern(p.outputTemplate, patternData{
		Pattern: p.pattern,
		Flags:   formatFlags(p.result.Builder.Flags()),
		Mask:    p.result.Builder.FlagMask(),
		Engine:  p.args.Engine,
		Groups:  groups,
	}, p.rejected != nil, p.colors)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.stdout, s)

	if !p.args.Groups {
		return nil
	}
	for _, g := range groups {
		s, err := renderGroup(p.groupsTemplate, g, p.colors)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.stdout, s)
	}
	p.log.Debug("printed groups", "count", len(groups))
	return nil
}

func (p *program) finishProfiling() error {
	if p.args.CPUProfile != "" {
		pprof.StopCPUProfile()
		err := os.WriteFile(p.args.CPUProfile, p.cpuProfile.Bytes(), 0o600)
		if err != nil {
			return fmt.Errorf("write CPU profile: %w", err)
		}
	}

	if p.args.MemProfile != "" {
		f, err := os.Create(p.args.MemProfile)
		if err != nil {
			return fmt.Errorf("create mem profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write mem profile: %w", err)
		}
	}

	return nil
}

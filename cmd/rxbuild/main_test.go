package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quasilyte/rxbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	code   int
	err    error
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code, err := mainNoExit(args, strings.NewReader(""), &stdout, &stderr)
	return runResult{
		code:   code,
		err:    err,
		stdout: stdout.String(),
		stderr: stderr.String(),
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{
			name:   "raw",
			args:   []string{"--no-color", `raw("ab").many()`},
			code:   exitOK,
			stdout: "ab+\n",
		},
		{
			name:   "groups",
			args:   []string{"-g", "--no-color", `x := group(raw("a")); y := group(raw("b")); x; y`},
			code:   exitOK,
			stdout: "(a)(b)\nx=1\ny=2\n",
		},
		{
			name:   "groups colored",
			args:   []string{"-g", "--color-name", "magenta", "--color-index", "white", `x := group(raw("a")); x`},
			code:   exitOK,
			stdout: "(a)\n\033[35;1mx\033[0m=1\n",
		},
		{
			name:   "groups format",
			args:   []string{"-g", "--no-color", "--groups-format", "{{.Index}} {{.Name}}", `s := group(raw("s")); s; group(raw("t")); s`},
			code:   exitOK,
			stdout: "(s)(t)(s)\n3 s\n",
		},
		{
			name:   "format",
			args:   []string{"--flags", "im", "--format", "{{.Mask}} {{.Flags}} {{.Engine}} {{.Pattern}}", `raw("a")`},
			code:   exitOK,
			stdout: "10 CaseInsensitive,Multiline regexp a\n",
		},
		{
			name:   "rejected by regexp",
			args:   []string{"--no-color", `ahead(raw("a"))`},
			code:   exitRejected,
			stdout: "(?=a)\n",
		},
		{
			name:   "rejected colored",
			args:   []string{"--color-error", "red", `ahead(raw("a"))`},
			code:   exitRejected,
			stdout: "\033[31;1m(?=a)\033[0m\n",
		},
		{
			name:   "accepted by regexp2",
			args:   []string{"-e", "regexp2", "--no-color", `ahead(raw("a"))`},
			code:   exitOK,
			stdout: "(?=a)\n",
		},
		{
			name:   "regexp2 timeout",
			args:   []string{"-e", "regexp2", "--timeout", "1s", "--no-color", `atomic(raw("a"))`},
			code:   exitOK,
			stdout: "(?>a)\n",
		},
		{
			name:   "no engine",
			args:   []string{"-e", "none", "--no-color", `notbehind(raw("a"))`},
			code:   exitOK,
			stdout: "(?<!a)\n",
		},
		{
			name:   "flag rejected by regexp",
			args:   []string{"--flags", "x", "--no-color", `raw("a")`},
			code:   exitRejected,
			stdout: "a\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.args...)
			require.NoError(t, r.err)
			assert.Equal(t, tt.code, r.code)
			assert.Equal(t, tt.stdout, r.stdout)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  string
	}{
		{"no expression", nil, "validate flags: expression can't be empty"},
		{"expression and file", []string{"-f", "x.rx", "raw(`a`)"}, "validate flags: expression and --file are mutually exclusive"},
		{"bad color", []string{"--color-name", "pink", "digit"}, "validate flags: color-name: unsupported color: pink"},
		{"bad timeout", []string{"--timeout=-1s", "digit"}, "validate flags: timeout: negative value -1s"},
		{"bad engine", []string{"-e", "pcre", "digit"}, `load config: engine: unexpected value "pcre"`},
		{"bad flags", []string{"--flags", "q", "digit"}, `load config: flags: unknown flag "q"`},
		{"missing config", []string{"-c", "testdata/missing.yml", "digit"}, "load config: read config file"},
		{"unknown pattern", []string{"@nope"}, `read expression: pattern "nope" is not defined in the config`},
		{"missing file", []string{"-f", "testdata/missing.rx"}, "read expression"},
		{"parse error", []string{"foo()"}, "parse expression: 1:1: convert call expr: unsupported foo function"},
		{"bad format", []string{"--format", "{{", "digit"}, "compile output format"},
		{"bad quantifier", []string{`raw("a").range(3, 1)`}, "parse expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.args...)
			require.Error(t, r.err)
			assert.Equal(t, exitError, r.code)
			assert.Contains(t, r.err.Error(), tt.err)
		})
	}
}

func TestRunWrappedErrors(t *testing.T) {
	r := run(t, "--flags", "q", "digit")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, rxbuild.ErrInvalidArgument)

	r = run(t, `g := group(); g.add(g)`)
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, rxbuild.ErrCycleDetected)
}

func TestRunLogging(t *testing.T) {
	r := run(t, "-v", "--no-color", `raw("a")`)
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, `msg="starting step" step="validate flags"`)
	assert.Contains(t, r.stderr, `step="finish profiling"`)

	r = run(t, "--no-color", `raw("a")`)
	require.NoError(t, r.err)
	assert.NotContains(t, r.stderr, "starting step")

	r = run(t, "--no-color", `a := group(raw("x")); b := group(raw("x")); a; b`)
	require.NoError(t, r.err)
	assert.Equal(t, "(x)(x)\n", r.stdout)
	assert.Contains(t, r.stderr, `level=WARN msg="duplicated binding" name=b of=a line=1`)

	r = run(t, "--no-color", `ahead(raw("a"))`)
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, `level=ERROR msg="pattern rejected" engine=regexp`)
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "url.rx")
	src := `
		proto := group(lit("http"), chars("s").optional())
		host := group(chars(".").addclass("word").many())
		start; proto; lit("://"); host; end
	`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	r := run(t, "-f", path, "-g", "--no-color")
	require.NoError(t, r.err)
	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "^(\\Qhttp\\E[s]?)\\Q://\\E([\\.\\w]+)$\nproto=1\nhost=2\n", r.stdout)
}

func TestRunConfig(t *testing.T) {
	t.Setenv("RXBUILD_TEST_SCHEME", "https")

	dir := t.TempDir()
	path := filepath.Join(dir, "rxbuild.yml")
	cfg := `
engine: regexp2
flags: i
groups_format: "{{.Name}}:{{.Index}}"
patterns:
  url:
    expr: |
      scheme := group(raw("${RXBUILD_TEST_SCHEME}"))
      start; scheme
    flags: m
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	r := run(t, "-c", path, "-g", "--no-color", "--format", "{{.Engine}} {{.Flags}} {{.Pattern}}", "@url")
	require.NoError(t, r.err)
	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "regexp2 CaseInsensitive,Multiline ^(https)\nscheme:1\n", r.stdout)

	// Command line arguments win over the config.
	r = run(t, "-c", path, "-e", "none", "--flags", "s", "--no-color", "--format", "{{.Engine}} {{.Flags}}", "@url")
	require.NoError(t, r.err)
	assert.Equal(t, "none DotAll,Multiline\n", r.stdout)
}

func TestReadExpressionStdin(t *testing.T) {
	p := &program{
		args:   arguments{Expr: "-"},
		stdin:  strings.NewReader("start; digit.count(3); end"),
		config: &config{},
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, p.readExpression())
	assert.Equal(t, "start; digit.count(3); end", p.src)
}

func TestRunProfiling(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.out")
	mem := filepath.Join(dir, "mem.out")

	r := run(t, "--cpuprofile", cpu, "--memprofile", mem, "--no-color", `raw("a")`)
	require.NoError(t, r.err)
	assert.FileExists(t, cpu)
	assert.FileExists(t, mem)
}

// Package compiler turns stylesheet sources into minified CSS.
//
// Compilation is treated as a pure function of the source file: every
// Compiler produced by New is configured identically wherever it is used so
// that separate invocations over the same source yield byte-identical output.
package compiler

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

const cssMediaType = "text/css"

// Engine names accepted by New.
const (
	EngineAuto  = "auto"
	EngineLessC = "lessc"
	EngineCSS   = "css"
)

// DefaultLessC is the lessc binary looked up on PATH when none is configured.
const DefaultLessC = "lessc"

// Compiler compiles the stylesheet at inputPath and streams the CSS to w.
// Any failure is returned as a compile-category error carrying the input path.
type Compiler interface {
	Compile(ctx context.Context, inputPath string, w io.Writer) error
}

// New returns the Compiler for engine. lessc is the binary used for LESS
// sources and defaults to DefaultLessC.
func New(engine, lessc string) (Compiler, error) {
	if lessc == "" {
		lessc = DefaultLessC
	}
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineAuto:
		return &Auto{Less: NewLessC(lessc), CSS: NewPlain()}, nil
	case EngineLessC:
		return NewLessC(lessc), nil
	case EngineCSS:
		return NewPlain(), nil
	default:
		return nil, foundationerrors.ConfigError("unknown compiler engine").
			WithContext("engine", engine).
			Build()
	}
}

// CompileString compiles inputPath fully in memory.
func CompileString(ctx context.Context, c Compiler, inputPath string) (string, error) {
	var buf bytes.Buffer
	if err := c.Compile(ctx, inputPath, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return m
}

func compileError(inputPath, message string, cause error) error {
	return foundationerrors.CompileError(message).
		WithCause(cause).
		WithContext("input", inputPath).
		Build()
}

// Plain minifies CSS sources that need no preprocessing.
type Plain struct {
	minifier *minify.M
}

// NewPlain returns a Plain compiler.
func NewPlain() *Plain {
	return &Plain{minifier: newMinifier()}
}

// Compile implements Compiler.
func (p *Plain) Compile(ctx context.Context, inputPath string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return compileError(inputPath, "compilation canceled", err)
	}
	// #nosec G304 -- inputPath is resolved through the sandbox by callers.
	f, err := os.Open(inputPath)
	if err != nil {
		return compileError(inputPath, "read stylesheet source", err)
	}
	defer func() { _ = f.Close() }()

	if err := p.minifier.Minify(cssMediaType, w, f); err != nil {
		return compileError(inputPath, "minify stylesheet", err)
	}
	return nil
}

// LessC compiles LESS sources by running the lessc binary and minifying its output.
type LessC struct {
	binary   string
	args     []string
	minifier *minify.M
}

// NewLessC returns a LessC compiler that runs binary.
func NewLessC(binary string) *LessC {
	return &LessC{
		binary:   binary,
		args:     []string{"--no-color"},
		minifier: newMinifier(),
	}
}

// Compile implements Compiler.
func (l *LessC) Compile(ctx context.Context, inputPath string, w io.Writer) error {
	// lessc reports missing files less clearly than a stat does.
	if _, err := os.Stat(inputPath); err != nil {
		return compileError(inputPath, "read stylesheet source", err)
	}

	args := append(append([]string{}, l.args...), inputPath)
	// #nosec G204 -- binary comes from trusted configuration, inputPath is sandboxed.
	cmd := exec.CommandContext(ctx, l.binary, args...)
	cmd.Dir = filepath.Dir(inputPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return compileError(inputPath, "compilation canceled", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return foundationerrors.CompileError("lessc failed").
				WithCause(err).
				WithContext("input", inputPath).
				WithContext("stderr", msg).
				Build()
		}
		return compileError(inputPath, "lessc failed", err)
	}

	if err := l.minifier.Minify(cssMediaType, w, &stdout); err != nil {
		return compileError(inputPath, "minify stylesheet", err)
	}
	return nil
}

// Auto dispatches on the source extension: .less goes through Less, anything else through CSS.
type Auto struct {
	Less Compiler
	CSS  Compiler
}

// Compile implements Compiler.
func (a *Auto) Compile(ctx context.Context, inputPath string, w io.Writer) error {
	if strings.EqualFold(filepath.Ext(inputPath), ".less") {
		return a.Less.Compile(ctx, inputPath, w)
	}
	return a.CSS.Compile(ctx, inputPath, w)
}

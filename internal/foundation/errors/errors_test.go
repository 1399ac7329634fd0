package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "lessbuild.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "lessbuild.yaml" {
			t.Errorf("expected context file=lessbuild.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if _, ok := AsClassified(err); !ok {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !err.IsSeverity(SeverityFatal) {
			t.Error("expected error to have fatal severity")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := PathEscapeError("path escapes root").WithContext("path", "../x").Build()
		wrapped := fmt.Errorf("resolve input: %w", inner)

		if !IsPathEscape(wrapped) {
			t.Error("expected wrapped error to be detected as path escape")
		}
		if IsFatal(wrapped) {
			t.Error("expected path escape to be non-fatal")
		}
		if !HasCategory(wrapped, CategoryPathEscape) {
			t.Errorf("expected category %s", CategoryPathEscape)
		}
	})

	t.Run("Unclassified errors are fatal", func(t *testing.T) {
		if !IsFatal(errors.New("boom")) {
			t.Error("expected unclassified error to be fatal")
		}
		if IsFatal(nil) {
			t.Error("expected nil error to be non-fatal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("exit status 1")
		err := WrapError(originalErr, CategoryCompile, "stylesheet compilation failed").
			Fatal().
			WithContext("input", "style.less").
			Build()

		if err.Category() != CategoryCompile {
			t.Errorf("expected category %s, got %s", CategoryCompile, err.Category())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Error() != "[compile:fatal] stylesheet compilation failed: exit status 1" {
			t.Errorf("unexpected error string %q", err.Error())
		}

		input, _ := err.Context().GetString("input")
		if input != "style.less" {
			t.Errorf("expected input context 'style.less', got %s", input)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"PathEscapeError", PathEscapeError("test"), CategoryPathEscape, SeverityWarning},
			{"IntegrityError", IntegrityError("test"), CategoryIntegrity, SeverityWarning},
			{"CompileError", CompileError("test"), CategoryCompile, SeverityFatal},
			{"BuildError", BuildError("test"), CategoryBuild, SeverityFatal},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	t.Run("Context operations", func(t *testing.T) {
		ctx := make(ErrorContext)
		ctx = ctx.Set("key1", "value1")
		ctx = ctx.Set("key2", 42)

		value1, exists1 := ctx.GetString("key1")
		if !exists1 || value1 != "value1" {
			t.Errorf("expected key1=value1, got %v", value1)
		}

		value2, exists2 := ctx.Get("key2")
		if !exists2 || value2 != 42 {
			t.Errorf("expected key2=42, got %v", value2)
		}

		_, exists3 := ctx.Get("nonexistent")
		if exists3 {
			t.Error("expected nonexistent key to not exist")
		}
	})

	t.Run("Context merge", func(t *testing.T) {
		ctx1 := ErrorContext{"key1": "value1", "shared": "original"}
		ctx2 := ErrorContext{"key2": "value2", "shared": "overridden"}

		merged := ctx1.Merge(ctx2)

		shared, _ := merged.GetString("shared")
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
		if _, ok := merged.Get("key1"); !ok {
			t.Error("expected key1 to survive merge")
		}
	})

	t.Run("WithContext does not mutate original", func(t *testing.T) {
		base := NewError(CategoryBuild, "base").Build()
		derived := base.WithContext("entry", "main")

		if _, ok := base.Context().Get("entry"); ok {
			t.Error("expected base context to be untouched")
		}
		if v, _ := derived.Context().GetString("entry"); v != "main" {
			t.Errorf("expected derived entry=main, got %q", v)
		}
	})
}

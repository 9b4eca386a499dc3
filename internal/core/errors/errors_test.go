package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeValidationError, "interface name must not be empty")
		if err.Error() != "[VALIDATION_ERROR] interface name must not be empty" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		err := Wrap(errors.New("boom"), CodeInternal, "render failed")
		expected := "[INTERNAL_ERROR] render failed: boom"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IOFailureKeepsCause", func(t *testing.T) {
		err := IOFailure(fs.ErrPermission, "/tmp/secret.py")
		if !IsCode(err, CodeIO) {
			t.Fatalf("expected IO code, got %v", err)
		}
		if !errors.Is(err, fs.ErrPermission) {
			t.Error("expected cause to be reachable through errors.Is")
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxPath] != "/tmp/secret.py" {
			t.Errorf("expected path context, got %+v", de)
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("scan: %w", New(CodeParseFailure, "syntax error"))
		if !IsCode(err, CodeParseFailure) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if IsCode(err, CodeIO) {
			t.Error("did not expect IO code")
		}
	})

	t.Run("AddContextOnPlainError", func(t *testing.T) {
		err := AddContext(errors.New("plain"), CtxOperation, "walk")
		code, ok := CodeOf(err)
		if !ok || code != CodeInternal {
			t.Errorf("expected internal code, got %q (%v)", code, ok)
		}
	})

	t.Run("AddContextKeepsOuterWrapping", func(t *testing.T) {
		inner := IOFailure(fs.ErrNotExist, "missing")
		outer := fmt.Errorf("walk: %w", inner)
		got := AddContext(outer, CtxOperation, "collect")
		if got != outer {
			t.Error("expected the original error value to be returned")
		}
		var de *DomainError
		errors.As(got, &de)
		if de.Context[CtxOperation] != "collect" {
			t.Errorf("expected operation context, got %v", de.Context)
		}
	})
}

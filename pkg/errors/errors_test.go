package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidTheme, "unknown theme: %s", "neon")
	if got, want := err.Error(), "INVALID_THEME: unknown theme: neon"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("unexpected token")
	err := Wrap(ErrCodeParseFailed, cause, "tasks document")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	if got, want := err.Error(), "PARSE_FAILED: tasks document: unexpected token"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeInvalidMinWidth, "bad minwidth")

	if !Is(err, ErrCodeInvalidMinWidth) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeParseFailed) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeParseFailed) {
		t.Error("Is should not match a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "boom")); got != ErrCodeInternal {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeInternal)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "input file is empty")
	if got, want := UserMessage(err), "input file is empty"; got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
	if got, want := UserMessage(fmt.Errorf("plain")), "plain"; got != want {
		t.Errorf("UserMessage on plain error = %q, want %q", got, want)
	}
}

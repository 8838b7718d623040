package domain

import (
	"errors"
	"testing"
)

func TestParseMode_Dispatch(t *testing.T) {
	mode, err := ParseMode("dispatch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeDispatch {
		t.Errorf("expected ModeDispatch, got %s", mode)
	}
}

func TestParseMode_Clean(t *testing.T) {
	mode, err := ParseMode("clean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeClean {
		t.Errorf("expected ModeClean, got %s", mode)
	}
}

func TestParseMode_CaseInsensitive(t *testing.T) {
	mode, err := ParseMode("  DISPATCH ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeDispatch {
		t.Errorf("expected ModeDispatch, got %s", mode)
	}
}

func TestParseMode_Invalid(t *testing.T) {
	for _, s := range []string{"", "both", "cleanup", "dispatch clean"} {
		_, err := ParseMode(s)
		if !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseMode(%q): expected ErrInvalidMode, got %v", s, err)
		}
	}
}

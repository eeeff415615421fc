package ui

import (
	"strings"
	"testing"

	"labctl/internal/runtime"
)

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	if got := StatusLabel(runtime.StatusBooting); got != "booting" {
		t.Fatalf("label=%q", got)
	}
	if got := StatusLabel(runtime.StatusNone); got != "-" {
		t.Fatalf("label=%q", got)
	}
}

func TestStatus_PadsBeforeStyling(t *testing.T) {
	t.Parallel()

	got := Status(runtime.StatusRunning, 10)
	if !strings.Contains(got, "running   ") {
		t.Fatalf("cell=%q", got)
	}
}

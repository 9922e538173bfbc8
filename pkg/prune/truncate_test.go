package prune

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const truncateFixture = `import os
import auth

def check_token(password):
    body line one
    body line two

def helper():
    body line three
    body line four

regular narrative line one
regular narrative line two
regular narrative line three
regular narrative line four
tail line at the very end`

func TestSmartTruncateUnderBudgetUnchanged(t *testing.T) {
	out, stats := SmartTruncate("short content", 1000, "", "")
	if out != "short content" {
		t.Error("under-budget content must pass through unchanged")
	}
	if len(stats.Operations) != 0 {
		t.Errorf("no operations expected, got %v", stats.Operations)
	}
}

func TestSmartTruncateRespectsBudget(t *testing.T) {
	out, stats := SmartTruncate(truncateFixture, 200, "", "")
	if len(out) > 200+len(truncationMarker) {
		t.Errorf("result size %d exceeds budget %d", len(out), 200)
	}
	if stats.FinalSize != len(out) {
		t.Error("stats must report the real final size")
	}
	if stats.ReductionPercentage <= 0 {
		t.Error("expected a recorded reduction")
	}
}

func TestSmartTruncateArchitectKeepsSignatures(t *testing.T) {
	out, _ := SmartTruncate(truncateFixture, 150, "architect", "")
	if !strings.Contains(out, "def check_token(password):") {
		t.Error("architect role must keep function signatures")
	}
	if !strings.Contains(out, "import os") {
		t.Error("architect role must keep imports")
	}
}

func TestSmartTruncateSecurityKeepsAuthLines(t *testing.T) {
	out, _ := SmartTruncate(truncateFixture, 120, "security", "")
	if !strings.Contains(out, "check_token(password)") {
		t.Error("security role must keep credential-handling lines")
	}
	if !strings.Contains(out, "import auth") {
		t.Error("security role must keep imports")
	}
}

func TestSmartTruncateDocumenterKeepsHeaders(t *testing.T) {
	doc := "# Title\n\nprose line one\nprose line two\n\n## API\n\n- item one\n- item two\n" +
		strings.Repeat("padding narrative line\n", 30)
	out, _ := SmartTruncate(doc, 150, "documenter", "")
	if !strings.Contains(out, "# Title") || !strings.Contains(out, "## API") {
		t.Error("documenter role must keep headers")
	}
	if !strings.Contains(out, "- item one") {
		t.Error("documenter role must keep list items")
	}
}

func TestSmartTruncateTaskWordsSurvive(t *testing.T) {
	out, _ := SmartTruncate(truncateFixture, 150, "", "inspect the helper routine")
	if !strings.Contains(out, "def helper():") {
		t.Error("lines matching task words must survive")
	}
}

func TestSmartTruncateKeepsBothEdges(t *testing.T) {
	out, _ := SmartTruncate(truncateFixture, 180, "", "")
	if !strings.Contains(out, "import os") {
		t.Error("document start should survive")
	}
	if !strings.Contains(out, "tail line at the very end") {
		t.Error("document end should survive")
	}
}

func TestSmartTruncateHardCutMarker(t *testing.T) {
	// Essential-heavy content cannot fit the budget, forcing the hard cut.
	content := strings.Repeat("def f(): pass\n", 50)
	out, stats := SmartTruncate(content, 100, "architect", "")
	if !strings.HasSuffix(out, truncationMarker) {
		t.Error("over-budget result must end with the truncation marker")
	}
	found := false
	for _, op := range stats.Operations {
		if op == "hard_cut" {
			found = true
		}
	}
	if !found {
		t.Errorf("hard_cut operation expected, got %v", stats.Operations)
	}
}

func TestSmartTruncateHardCutRuneSafe(t *testing.T) {
	// A single essential line of multi-byte runes lands the cut mid-rune
	// unless the cut backs up to a boundary.
	content := "def " + strings.Repeat("α", 100) + "(): pass"
	out, stats := SmartTruncate(content, 99, "architect", "")
	if !utf8.ValidString(out) {
		t.Error("hard cut must not split a multi-byte rune")
	}
	if !strings.HasSuffix(out, truncationMarker) {
		t.Error("hard-cut result must end with the truncation marker")
	}
	found := false
	for _, op := range stats.Operations {
		if op == "hard_cut" {
			found = true
		}
	}
	if !found {
		t.Errorf("hard_cut operation expected, got %v", stats.Operations)
	}
}

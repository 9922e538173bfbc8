package prune

import (
	"fmt"
	"strings"
	"testing"

	"github.com/condense-ai/condense/pkg/config"
)

const pythonFixture = "import os\ndef f():\n    print('x')\n    # comment\n    return 1\n"

func defaultPruning() config.PruningConfig {
	return config.Default().Pruning
}

func TestCodePruneRemovesDebugAndComments(t *testing.T) {
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(pythonFixture, 0.3)
	if err != nil {
		t.Fatal(err)
	}

	pruned := res.PrunedContent
	if !strings.Contains(pruned, "def f():") || !strings.Contains(pruned, "return 1") {
		t.Fatalf("structure must survive, got:\n%s", pruned)
	}
	if strings.Contains(pruned, "print(") {
		t.Error("debug statement should be removed")
	}
	if strings.Contains(pruned, "# comment") {
		t.Error("plain comment should be removed")
	}
	if res.QualityScore < 0.7 {
		t.Errorf("quality = %v, want >= 0.7", res.QualityScore)
	}
	if res.ReductionPercentage <= 0 {
		t.Error("expected a positive reduction")
	}
}

func TestCodePruneStopsWhenTargetMet(t *testing.T) {
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(pythonFixture, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range res.OperationsApplied {
		if op == opRemoveComments {
			t.Error("comment removal should not run once the target is met")
		}
	}
	if !strings.Contains(res.PrunedContent, "# comment") {
		t.Error("comment should survive an already-met target")
	}
}

func TestCodePrunePreservesCriticalComments(t *testing.T) {
	content := "#!/usr/bin/env python\n# SECURITY: do not log the token\n# regular note\ndef f():\n    return 1\n"
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(content, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.PrunedContent, "#!/usr/bin/env python") {
		t.Error("shebang must survive")
	}
	if !strings.Contains(res.PrunedContent, "SECURITY") {
		t.Error("security comment must survive")
	}
	if strings.Contains(res.PrunedContent, "# regular note") {
		t.Error("plain comment should be removed")
	}
}

func TestCodePruneDocstringSummarization(t *testing.T) {
	content := `import math

def f():
    """Frobnicates the widget.

    Long explanation line one.
    Long explanation line two.
    """
    return 1

def g():
    """Public API entry point.

    Details that must stay because this is the contract.
    """
    return 2
`
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(content, 0.4)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.PrunedContent, "Long explanation line one.") {
		t.Error("plain docstring body should be condensed")
	}
	if !strings.Contains(res.PrunedContent, "Frobnicates the widget.") {
		t.Error("docstring first line should survive")
	}
	if !strings.Contains(res.PrunedContent, "this is the contract") {
		t.Error("API docstring must survive in full")
	}
}

func TestCodePruneGoValidation(t *testing.T) {
	content := "package main\n\n// helper comment\nfunc main() {\n\tx := 1\n\t_ = x\n}\n"
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(content, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if !parsesAsGo(res.PrunedContent) {
		t.Fatalf("pruned Go must still parse:\n%s", res.PrunedContent)
	}
}

func TestCodePruneIdempotent(t *testing.T) {
	s := NewCodeStrategy(defaultPruning())
	first, err := s.Prune(pythonFixture, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Prune(first.PrunedContent, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if second.PrunedContent != first.PrunedContent {
		t.Error("pruning already-pruned content must be a fixed point")
	}
}

func TestCodePruneAggressiveNeedsOptIn(t *testing.T) {
	content := pythonFixture + strings.Repeat("x = 1  # padding\n", 20)

	safe := NewCodeStrategy(defaultPruning())
	safeRes, err := safe.Prune(content, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range safeRes.OperationsApplied {
		if op == opAggressiveStrip {
			t.Fatal("aggressive strip must not run without opt-in")
		}
	}

	cfg := defaultPruning()
	cfg.AllowAggressive = true
	aggressive := NewCodeStrategy(cfg)
	aggRes, err := aggressive.Prune(content, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if aggRes.QualityScore >= safeRes.QualityScore {
		t.Errorf("aggressive pruning must cost quality: %v >= %v",
			aggRes.QualityScore, safeRes.QualityScore)
	}
}

func TestCodePruneEmptyingRejected(t *testing.T) {
	content := "# only\n# comments\n# here\n"
	s := NewCodeStrategy(defaultPruning())
	res, err := s.Prune(content, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(res.PrunedContent) == "" {
		t.Error("pruning must never empty non-empty content")
	}
	if len(res.Warnings) == 0 {
		t.Error("rejected pass should leave a warning")
	}
}

func TestCodePruneReductionMonotonicInTarget(t *testing.T) {
	var b strings.Builder
	b.WriteString("import os\n\n")
	for i := 0; i < 6; i++ {
		b.WriteString("def worker():\n")
		b.WriteString("    \"\"\"Does routine work.\n\n    More detail on the routine.\n    \"\"\"\n")
		b.WriteString("    print('trace')\n")
		b.WriteString("    # obvious note\n")
		b.WriteString("    value = step()\n")
		b.WriteString("    return value\n\n\n")
	}
	content := b.String()

	cfg := defaultPruning()
	cfg.AllowAggressive = true
	s := NewCodeStrategy(cfg)

	prev := 0.0
	for _, target := range []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7} {
		res, err := s.Prune(content, target)
		if err != nil {
			t.Fatal(err)
		}
		if res.ReductionPercentage < prev-1e-9 {
			t.Fatalf("reduction dropped from %v to %v when target rose to %v",
				prev, res.ReductionPercentage, target)
		}
		prev = res.ReductionPercentage
	}
}

func TestCodePruneFunctionRetentionFloor(t *testing.T) {
	var b strings.Builder
	b.WriteString("import sys\n\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "def fn%d():\n    # note\n    return %d\n\n", i, i)
	}

	cfg := defaultPruning()
	cfg.AllowAggressive = true
	s := NewCodeStrategy(cfg)
	res, err := s.Prune(b.String(), 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(res.PrunedContent, "def fn"); got < 9 {
		t.Errorf("only %d of 10 functions survived, floor is 9", got)
	}
}

func TestCodeFallbackHonorsDisabledStages(t *testing.T) {
	cfg := defaultPruning()
	cfg.RemoveDebugStatements = false
	cfg.CompressWhitespace = false

	content := "# alpha\n# beta\n# gamma\n"
	s := NewCodeStrategy(cfg)
	res, err := s.Prune(content, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if res.PrunedContent != content {
		t.Errorf("fallback with all safe stages disabled must return the original, got:\n%s",
			res.PrunedContent)
	}
	for _, op := range res.OperationsApplied {
		if op == opRemoveDebug || op == opCompressWhitespace {
			t.Errorf("disabled stage %q ran during fallback", op)
		}
	}
	if len(res.Warnings) == 0 {
		t.Error("fallback should leave a warning")
	}
}

func TestCodeEstimateReduction(t *testing.T) {
	s := NewCodeStrategy(defaultPruning())
	if est := s.EstimateReduction(pythonFixture); est <= 0 || est >= 1 {
		t.Errorf("estimate should be a fraction in (0, 1), got %v", est)
	}
	if est := s.EstimateReduction(""); est != 0 {
		t.Errorf("empty content estimates 0, got %v", est)
	}
}

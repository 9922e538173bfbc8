package analyzer

import (
	"strings"
	"testing"

	"github.com/condense-ai/condense/pkg/models"
	"github.com/condense-ai/condense/pkg/token"
)

const pythonSample = `import os
import sys

def first():
    return 1

def second():
    if os.path.exists("x"):
        return 2
    return 3

class Widget:
    def method(self):
        return 4
`

const markdownSample = `Intro paragraph before any header.

# Getting Started

Install the thing.

# API Reference

Call the function.
`

func newTestAnalyzer() *Analyzer {
	return New(token.NewEstimator())
}

func TestDetectContentTypeByExtension(t *testing.T) {
	cases := []struct {
		path string
		want models.ContentType
	}{
		{"main.go", models.ContentCode},
		{"script.py", models.ContentCode},
		{"README.md", models.ContentDocumentation},
		{"config.yaml", models.ContentConfig},
		{"index.html", models.ContentMarkup},
		{"data.csv", models.ContentData},
	}
	for _, c := range cases {
		if got := DetectContentType("anything", c.path); got != c.want {
			t.Errorf("DetectContentType(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestDetectContentTypeByContent(t *testing.T) {
	if got := DetectContentType(pythonSample, ""); got != models.ContentCode {
		t.Errorf("python content detected as %q, want code", got)
	}
	if got := DetectContentType(markdownSample, ""); got != models.ContentDocumentation {
		t.Errorf("markdown content detected as %q, want documentation", got)
	}
	if got := DetectContentType("<html><body>hi</body></html>", ""); got != models.ContentMarkup {
		t.Errorf("html content detected as %q, want markup", got)
	}
	if got := DetectContentType(`{"a": 1, "b": 2}`, ""); got != models.ContentConfig {
		t.Errorf("json content detected as %q, want config", got)
	}
	if got := DetectContentType("", ""); got != models.ContentUnknown {
		t.Errorf("empty content detected as %q, want unknown", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"package main\n\nfunc main() {}\n", "go"},
		{"import os\n\ndef f():\n    pass\n", "python"},
		{"const x = 1;\nfunction f() {}\n", "javascript"},
		{"public class Main { private int x; }", "java"},
		{"#include <stdio.h>\nint main() {}\n", "cpp"},
		{"just some plain words", "generic"},
	}
	for _, c := range cases {
		if got := DetectLanguage(c.content); got != c.want {
			t.Errorf("DetectLanguage(%.20q) = %q, want %q", c.content, got, c.want)
		}
	}
}

func TestAnalyzeCodeSections(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze(pythonSample, "sample.py")

	if res.ContentType != models.ContentCode {
		t.Fatalf("content type = %q, want code", res.ContentType)
	}
	if res.Metadata.Language != "python" {
		t.Errorf("language = %q, want python", res.Metadata.Language)
	}

	names := make([]string, len(res.Sections))
	for i, s := range res.Sections {
		names[i] = s.Name
	}
	want := []string{"preamble", "first", "second", "Widget"}
	if len(names) != len(want) {
		t.Fatalf("section names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("section names = %v, want %v", names, want)
		}
	}

	for _, s := range res.Sections {
		if s.TokenCount <= 0 {
			t.Errorf("section %q has no token count", s.Name)
		}
		if s.StartLine > s.EndLine {
			t.Errorf("section %q has inverted line range %d..%d", s.Name, s.StartLine, s.EndLine)
		}
	}
	if res.Sections[0].ImportanceScore >= res.Sections[1].ImportanceScore {
		t.Error("preamble should score below a function")
	}
}

func TestAnalyzeDocSections(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze(markdownSample, "README.md")

	if len(res.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(res.Sections))
	}
	if res.Sections[0].Name != "introduction" {
		t.Errorf("leading content should be introduction, got %q", res.Sections[0].Name)
	}
	if res.Sections[2].Name != "API Reference" {
		t.Errorf("third section = %q, want API Reference", res.Sections[2].Name)
	}
	if res.Sections[2].ImportanceScore <= res.Sections[0].ImportanceScore {
		t.Error("API section should outrank the introduction")
	}
}

func TestAnalyzeSectionsCoverContent(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze(pythonSample, "sample.py")

	var joined strings.Builder
	for i, s := range res.Sections {
		if i > 0 {
			joined.WriteString("\n")
		}
		joined.WriteString(s.Text)
	}
	if strings.TrimSpace(joined.String()) != strings.TrimSpace(pythonSample) {
		t.Error("concatenated sections should reproduce the original content")
	}
}

func TestAnalyzeUnknownSingleSection(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze("col1,col2\n1,2\n3,4\n", "rows.csv")

	if res.ContentType != models.ContentData {
		t.Fatalf("content type = %q, want data", res.ContentType)
	}
	if len(res.Sections) != 1 || res.Sections[0].Name != "body" {
		t.Fatalf("expected a single body section, got %+v", res.Sections)
	}
}

// Package analyzer classifies content and segments it into named, scored
// sections for prioritization and strategy selection.
package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/condense-ai/condense/pkg/models"
	"github.com/condense-ai/condense/pkg/token"
)

// Metadata is auxiliary information about analyzed content.
type Metadata struct {
	LineCount int    `json:"line_count"`
	CharCount int    `json:"char_count"`
	Language  string `json:"language,omitempty"`
}

// Analysis is the result of content analysis.
type Analysis struct {
	ContentType models.ContentType `json:"content_type"`
	Sections    []models.Section   `json:"sections"`
	Metadata    Metadata           `json:"metadata"`
}

// Analyzer segments content into sections.
type Analyzer struct {
	counter token.Counter
}

// New creates an Analyzer using the given token counter.
func New(counter token.Counter) *Analyzer {
	return &Analyzer{counter: counter}
}

var extensionTypes = map[string]models.ContentType{
	".py": models.ContentCode, ".pyx": models.ContentCode,
	".js": models.ContentCode, ".ts": models.ContentCode,
	".jsx": models.ContentCode, ".tsx": models.ContentCode,
	".java": models.ContentCode, ".kt": models.ContentCode, ".scala": models.ContentCode,
	".cpp": models.ContentCode, ".c": models.ContentCode,
	".h": models.ContentCode, ".hpp": models.ContentCode,
	".go": models.ContentCode, ".rs": models.ContentCode, ".rb": models.ContentCode,
	".php": models.ContentCode, ".swift": models.ContentCode, ".cs": models.ContentCode,
	".sql": models.ContentCode,

	".md": models.ContentDocumentation, ".rst": models.ContentDocumentation,
	".txt": models.ContentDocumentation, ".adoc": models.ContentDocumentation,

	".json": models.ContentConfig, ".yaml": models.ContentConfig, ".yml": models.ContentConfig,
	".toml": models.ContentConfig, ".ini": models.ContentConfig,
	".cfg": models.ContentConfig, ".conf": models.ContentConfig,

	".html": models.ContentMarkup, ".htm": models.ContentMarkup,
	".xml": models.ContentMarkup, ".svg": models.ContentMarkup,

	".csv": models.ContentData, ".tsv": models.ContentData,
}

var (
	codeSignatureRe = regexp.MustCompile(`(?m)^(func |def |class |function |public class |package |import |#include )`)
	headerRe        = regexp.MustCompile(`^#{1,6}\s+`)
	topLevelDeclRe  = regexp.MustCompile(`^(func\s+(\(\w+\s+\*?\w+\)\s+)?(\w+)|def\s+(\w+)|class\s+(\w+)|function\s+(\w+))`)
	configLineRe    = regexp.MustCompile(`(?m)^\s*[\w.-]+\s*[:=]`)
)

// DetectContentType classifies content, preferring the path hint's
// extension and falling back to content heuristics. Pure function.
func DetectContentType(content, pathHint string) models.ContentType {
	if pathHint != "" {
		if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(pathHint))]; ok {
			return ct
		}
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.ContentUnknown
	}

	if len(codeSignatureRe.FindAllStringIndex(content, 3)) >= 2 {
		return models.ContentCode
	}
	if strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">") {
		return models.ContentMarkup
	}
	if hasMarkdownStructure(content) {
		return models.ContentDocumentation
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return models.ContentConfig
	}
	if lines := strings.Split(content, "\n"); len(lines) > 2 &&
		len(configLineRe.FindAllString(content, -1)) > len(lines)/2 {
		return models.ContentConfig
	}
	return models.ContentUnknown
}

func hasMarkdownStructure(content string) bool {
	headers := 0
	for _, line := range strings.Split(content, "\n") {
		if headerRe.MatchString(line) {
			headers++
		}
	}
	return headers > 0 || strings.Contains(content, "```")
}

// DetectLanguage guesses a programming language from content signatures.
// Pure function; returns "generic" when nothing matches.
func DetectLanguage(content string) string {
	switch {
	case strings.Contains(content, "package ") && regexp.MustCompile(`(?m)^func\s`).MatchString(content):
		return "go"
	case regexp.MustCompile(`def\s+\w+.*:`).MatchString(content) && strings.Contains(content, "import "):
		return "python"
	case strings.Contains(content, "function ") &&
		(strings.Contains(content, "var ") || strings.Contains(content, "let ") || strings.Contains(content, "const ")):
		return "javascript"
	case strings.Contains(content, "public class ") || strings.Contains(content, "private ") ||
		regexp.MustCompile(`(?m)^package\s+[\w.]+;`).MatchString(content):
		return "java"
	case strings.Contains(content, "#include ") &&
		(strings.Contains(content, "int main") || strings.Contains(content, "void ")):
		return "cpp"
	default:
		return "generic"
	}
}

// Analyze classifies content and splits it into sections. The zero-section
// case never happens for non-empty content: there is always at least a
// whole-body section.
func (a *Analyzer) Analyze(content, pathHint string) Analysis {
	contentType := DetectContentType(content, pathHint)

	meta := Metadata{
		LineCount: len(strings.Split(content, "\n")),
		CharCount: len(content),
	}
	if contentType == models.ContentCode {
		meta.Language = DetectLanguage(content)
	}

	var sections []models.Section
	switch contentType {
	case models.ContentCode:
		sections = a.codeSections(content)
	case models.ContentDocumentation:
		sections = a.docSections(content)
	default:
		sections = a.wholeBody(content, contentType)
	}

	return Analysis{ContentType: contentType, Sections: sections, Metadata: meta}
}

// codeSections splits code at top-level declarations. Anything before the
// first declaration becomes a preamble section.
func (a *Analyzer) codeSections(content string) []models.Section {
	lines := strings.Split(content, "\n")
	var sections []models.Section

	flush := func(name string, start, end int, importance float64) {
		if start > end {
			return
		}
		text := strings.Join(lines[start:end+1], "\n")
		if strings.TrimSpace(text) == "" {
			return
		}
		sections = append(sections, models.Section{
			Name:            name,
			Text:            text,
			StartLine:       start,
			EndLine:         end,
			TokenCount:      a.counter.Count(text, string(models.ContentCode)),
			ImportanceScore: importance,
			ComplexityScore: complexityOf(text),
		})
	}

	start := 0
	name := "preamble"
	importance := 0.6
	for i, line := range lines {
		m := topLevelDeclRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if i > start {
			flush(name, start, i-1, importance)
		} else if i == start && name != "preamble" {
			flush(name, start, i-1, importance)
		}
		start = i
		name = declName(m)
		if strings.HasPrefix(line, "class ") {
			importance = 0.9
		} else {
			importance = 1.0
		}
	}
	flush(name, start, len(lines)-1, importance)

	if len(sections) == 0 {
		return a.wholeBody(content, models.ContentCode)
	}
	return sections
}

func declName(m []string) string {
	for _, g := range m[2:] {
		if g != "" && !strings.HasPrefix(g, "(") {
			return g
		}
	}
	return strings.Fields(m[0])[0]
}

// docSections splits documentation at markdown headers; content before the
// first header becomes an introduction section.
func (a *Analyzer) docSections(content string) []models.Section {
	lines := strings.Split(content, "\n")
	var sections []models.Section

	flush := func(name string, start, end int) {
		if start > end {
			return
		}
		text := strings.Join(lines[start:end+1], "\n")
		if strings.TrimSpace(text) == "" {
			return
		}
		sections = append(sections, models.Section{
			Name:            name,
			Text:            text,
			StartLine:       start,
			EndLine:         end,
			TokenCount:      a.counter.Count(text, string(models.ContentDocumentation)),
			ImportanceScore: headerImportance(name),
			ComplexityScore: complexityOf(text),
		})
	}

	start := 0
	name := "introduction"
	for i, line := range lines {
		if !headerRe.MatchString(line) {
			continue
		}
		if i > start {
			flush(name, start, i-1)
		}
		start = i
		name = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if name == "" {
			name = "section"
		}
	}
	flush(name, start, len(lines)-1)

	if len(sections) == 0 {
		return a.wholeBody(content, models.ContentDocumentation)
	}
	return sections
}

func (a *Analyzer) wholeBody(content string, ct models.ContentType) []models.Section {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := len(strings.Split(content, "\n"))
	return []models.Section{{
		Name:            "body",
		Text:            content,
		StartLine:       0,
		EndLine:         lines - 1,
		TokenCount:      a.counter.Count(content, string(ct)),
		ImportanceScore: 0.5,
		ComplexityScore: complexityOf(content),
	}}
}

func headerImportance(name string) float64 {
	lower := strings.ToLower(name)
	for _, kw := range []string{"api", "usage", "reference", "install", "configuration"} {
		if strings.Contains(lower, kw) {
			return 1.0
		}
	}
	if lower == "introduction" {
		return 0.8
	}
	return 0.7
}

// complexityOf is a coarse structural complexity estimate in [0, 1] based
// on length and nesting depth.
func complexityOf(text string) float64 {
	lines := strings.Split(text, "\n")
	maxIndent := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent > maxIndent {
			maxIndent = indent
		}
	}
	lengthScore := float64(len(lines)) / 100
	if lengthScore > 0.5 {
		lengthScore = 0.5
	}
	depthScore := float64(maxIndent) / 24
	if depthScore > 0.5 {
		depthScore = 0.5
	}
	return lengthScore + depthScore
}

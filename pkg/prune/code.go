package prune

import (
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/condense-ai/condense/pkg/analyzer"
	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/models"
)

// debugPatterns match statements that exist only for development output.
var debugPatterns = map[string][]*regexp.Regexp{
	"python": {
		regexp.MustCompile(`^\s*print\s*\(`),
		regexp.MustCompile(`^\s*pprint\s*\(`),
		regexp.MustCompile(`^\s*logging\.debug\s*\(`),
		regexp.MustCompile(`^\s*breakpoint\s*\(\s*\)`),
	},
	"javascript": {
		regexp.MustCompile(`^\s*console\.(log|debug|trace)\s*\(`),
		regexp.MustCompile(`^\s*debugger\s*;?\s*$`),
	},
	"java": {
		regexp.MustCompile(`^\s*System\.out\.print(ln)?\s*\(`),
	},
	"cpp": {
		regexp.MustCompile(`^\s*(std::)?cout\s*<<`),
		regexp.MustCompile(`^\s*printf\s*\(`),
	},
	"go": {
		regexp.MustCompile(`^\s*fmt\.Print(ln|f)?\s*\(`),
	},
	"generic": {
		regexp.MustCompile(`^\s*print\s*\(`),
	},
}

// preserveComment matches comments that must survive comment removal.
var preserveComment = []*regexp.Regexp{
	regexp.MustCompile(`^#!`),
	regexp.MustCompile(`coding[:=]`),
	regexp.MustCompile(`#\s*type:`),
	regexp.MustCompile(`TODO.*IMPORTANT`),
	regexp.MustCompile(`FIXME.*CRITICAL`),
	regexp.MustCompile(`SECURITY`),
	regexp.MustCompile(`LICENSE`),
}

// docstringKeep marks docstrings carrying contract-level information.
var docstringKeep = regexp.MustCompile(`(?i)\b(api|public|interface|important|critical|security)\b`)

var functionDeclRe = regexp.MustCompile(`(?m)^\s*(func\s|def\s|function\s|public\s+\w+\s+\w+\s*\()`)

// CodeStrategy prunes source code in staged passes ordered safest first,
// stopping once the target reduction is met. Every result is validated for
// structural survival before it is returned.
type CodeStrategy struct {
	cfg config.PruningConfig
}

// NewCodeStrategy creates a CodeStrategy.
func NewCodeStrategy(cfg config.PruningConfig) *CodeStrategy {
	return &CodeStrategy{cfg: cfg}
}

func (c *CodeStrategy) Name() string { return "code" }

func (c *CodeStrategy) CanHandle(ct models.ContentType) bool {
	return ct == models.ContentCode
}

func (c *CodeStrategy) Priority() int { return 10 }

// EstimateReduction runs the cheap safe passes and measures them.
func (c *CodeStrategy) EstimateReduction(content string) float64 {
	if content == "" {
		return 0
	}
	lang := analyzer.DetectLanguage(content)
	pruned := removeDebugStatements(content, lang)
	pruned, _ = compressWhitespace(pruned)
	pruned = removeComments(pruned, lang, false)
	return reductionOf(content, pruned)
}

func (c *CodeStrategy) Prune(content string, targetReduction float64) (models.PruningResult, error) {
	lang := analyzer.DetectLanguage(content)

	pruned := content
	var ops []string
	var warnings []string
	quality := 1.0

	met := func() bool { return reductionOf(content, pruned) >= targetReduction }

	if c.cfg.RemoveDebugStatements {
		next := removeDebugStatements(pruned, lang)
		if next != pruned {
			pruned = next
			ops = append(ops, opRemoveDebug)
			quality += 0.02
		}
	}

	if c.cfg.CompressWhitespace && !met() {
		next, changed := compressWhitespace(pruned)
		if changed {
			pruned = next
			ops = append(ops, opCompressWhitespace)
			quality += 0.02
		}
	}

	if c.cfg.RemoveComments && !met() {
		next := removeComments(pruned, lang, false)
		if next != pruned {
			pruned = next
			ops = append(ops, opRemoveComments)
			quality -= 0.05
		}
	}

	if c.cfg.SummarizeDocstrings && !met() && lang == "python" {
		next := summarizeDocstrings(pruned)
		if next != pruned {
			pruned = next
			ops = append(ops, opSummarizeDocstrings)
			quality -= 0.1
		}
	}

	if c.cfg.AllowAggressive && !met() {
		next := aggressiveStrip(pruned, lang)
		if next != pruned {
			pruned = next
			ops = append(ops, opAggressiveStrip)
			quality -= 0.3
			warnings = append(warnings, "aggressive strip applied, all comments and docstrings removed")
		}
	}

	if problem := c.validate(content, pruned, lang); problem != "" {
		warnings = append(warnings, problem+", falling back to safe operations")
		pruned = content
		ops = nil
		if c.cfg.RemoveDebugStatements {
			pruned = removeDebugStatements(pruned, lang)
			ops = append(ops, opRemoveDebug)
		}
		if c.cfg.CompressWhitespace {
			pruned, _ = compressWhitespace(pruned)
			ops = append(ops, opCompressWhitespace)
		}
		quality = 1.0
	}

	quality *= structuralPreservation(content, pruned)
	return models.NewPruningResult(content, pruned, ops, clamp01(quality), warnings), nil
}

// validate returns a non-empty problem description when the pruned content
// must be rejected.
func (c *CodeStrategy) validate(original, pruned, lang string) string {
	if strings.TrimSpace(pruned) == "" && strings.TrimSpace(original) != "" {
		return "pruning emptied the content"
	}
	if reductionOf(original, pruned) > c.cfg.MaxCodeReduction {
		return "reduction exceeds the code cap"
	}
	origFuncs := len(functionDeclRe.FindAllString(original, -1))
	prunedFuncs := len(functionDeclRe.FindAllString(pruned, -1))
	if origFuncs > 0 && float64(prunedFuncs)/float64(origFuncs) < c.cfg.MinFunctionRetention {
		return "function retention below the floor"
	}
	if lang == "go" {
		if parsesAsGo(original) && !parsesAsGo(pruned) {
			return "pruned content no longer parses as Go"
		}
	} else if delimitersBalanced(original) && !delimitersBalanced(pruned) {
		return "pruned content has unbalanced delimiters"
	}
	return ""
}

func parsesAsGo(src string) bool {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "src.go", src, parser.SkipObjectResolution)
	return err == nil
}

func delimitersBalanced(src string) bool {
	pairs := [][2]rune{{'(', ')'}, {'[', ']'}, {'{', '}'}}
	for _, p := range pairs {
		if strings.Count(src, string(p[0])) != strings.Count(src, string(p[1])) {
			return false
		}
	}
	return true
}

// structuralPreservation scales quality by how much of the function
// structure survived.
func structuralPreservation(original, pruned string) float64 {
	origFuncs := len(functionDeclRe.FindAllString(original, -1))
	if origFuncs == 0 {
		return 1.0
	}
	prunedFuncs := len(functionDeclRe.FindAllString(pruned, -1))
	ratio := float64(prunedFuncs) / float64(origFuncs)
	if ratio > 1 {
		ratio = 1
	}
	return 0.7 + 0.3*ratio
}

func removeDebugStatements(content, lang string) string {
	patterns := debugPatterns[lang]
	if patterns == nil {
		patterns = debugPatterns["generic"]
	}
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
lineLoop:
	for _, line := range lines {
		for _, re := range patterns {
			if re.MatchString(line) {
				continue lineLoop
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// removeComments drops full-line comments. With all=false the preserve
// patterns survive; with all=true everything goes. Trailing comments are
// left alone so string literals cannot be corrupted.
func removeComments(content, lang string, all bool) string {
	marker := commentMarker(lang)
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, marker) {
			if !all && mustPreserve(trimmed) {
				out = append(out, line)
			}
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func commentMarker(lang string) string {
	switch lang {
	case "python", "generic":
		return "#"
	default:
		return "//"
	}
}

func mustPreserve(comment string) bool {
	for _, re := range preserveComment {
		if re.MatchString(comment) {
			return true
		}
	}
	return false
}

// summarizeDocstrings reduces multi-line triple-quoted docstrings to their
// first line unless they carry contract-level keywords.
func summarizeDocstrings(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		quote := docstringQuote(trimmed)
		if quote == "" || isSingleLineDocstring(trimmed, quote) {
			out = append(out, line)
			continue
		}

		end := i
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], quote) {
				end = j
				break
			}
		}
		if end == i {
			out = append(out, line)
			continue
		}

		block := strings.Join(lines[i:end+1], "\n")
		if docstringKeep.MatchString(block) {
			out = append(out, lines[i:end+1]...)
		} else {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			summary := strings.TrimSpace(strings.TrimPrefix(trimmed, quote))
			if summary == "" && i+1 <= end {
				summary = strings.TrimSpace(lines[i+1])
			}
			out = append(out, indent+quote+summary+quote)
		}
		i = end
	}
	return strings.Join(out, "\n")
}

func docstringQuote(trimmed string) string {
	if strings.HasPrefix(trimmed, `"""`) {
		return `"""`
	}
	if strings.HasPrefix(trimmed, "'''") {
		return "'''"
	}
	return ""
}

func isSingleLineDocstring(trimmed, quote string) bool {
	return len(trimmed) >= 2*len(quote) && strings.HasSuffix(trimmed, quote) && trimmed != quote
}

// aggressiveStrip removes every comment and docstring, collapses blank
// lines, and truncates very long lines.
func aggressiveStrip(content, lang string) string {
	pruned := removeComments(content, lang, true)
	if lang == "python" {
		pruned = stripDocstrings(pruned)
	}
	pruned, _ = compressWhitespace(pruned)
	pruned, _ = stripAllBlankLines(pruned)
	pruned, _ = truncateLongLines(pruned, longLineLimit)
	return pruned
}

func stripAllBlankLines(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	result := strings.Join(out, "\n")
	return result, result != content
}

// stripDocstrings removes triple-quoted blocks entirely.
func stripDocstrings(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		quote := docstringQuote(trimmed)
		if quote == "" {
			out = append(out, lines[i])
			continue
		}
		if isSingleLineDocstring(trimmed, quote) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], quote) {
				i = j
				break
			}
		}
	}
	return strings.Join(out, "\n")
}

// Package normalizer cleans text extracted from statement PDFs so that the
// parser's literal phrase anchors match. PDF text extraction produces
// typographic hyphens, non-breaking spaces and ragged spacing that differ from
// the phrases printed on the page.
package normalizer

import (
	"regexp"
	"strings"
)

// Rule rewrites every match of Pattern with Replacement.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// TextNormalizer applies character folding and rewrite rules to page text.
type TextNormalizer struct {
	folder *strings.Replacer
	rules  []Rule
}

// NewTextNormalizer creates a normalizer with the default folding and rules.
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{
		folder: defaultFolder(),
		rules:  defaultRules(),
	}
}

// Normalize folds look-alike characters to ASCII, applies the rewrite rules,
// collapses horizontal whitespace and drops blank lines. Line structure is kept.
func (n *TextNormalizer) Normalize(text string) string {
	folded := n.folder.Replace(text)
	for _, r := range n.rules {
		folded = r.Pattern.ReplaceAllString(folded, r.Replacement)
	}

	lines := strings.Split(folded, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = horizontalSpace.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// AddRule appends a custom rewrite rule, applied after the defaults.
func (n *TextNormalizer) AddRule(pattern, replacement string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	n.rules = append(n.rules, Rule{Pattern: re, Replacement: replacement})
	return nil
}

var horizontalSpace = regexp.MustCompile(`[ \t\f\v\r]+`)

func defaultFolder() *strings.Replacer {
	return strings.NewReplacer(
		// spaces
		"\u00a0", " ", // no-break space
		"\u2007", " ", // figure space
		"\u2009", " ", // thin space
		"\u202f", " ", // narrow no-break space
		"\u200b", "", // zero width space
		"\ufeff", "",
		// hyphens and minus
		"\u2010", "-",
		"\u2011", "-",
		"\u2012", "-",
		"\u2013", "-",
		"\u2014", "-",
		"\u2015", "-",
		"\u2212", "-",
		// quotes
		"\u2018", "'",
		"\u2019", "'",
		"\u201c", `"`,
		"\u201d", `"`,
		// ligatures
		"\ufb01", "fi",
		"\ufb02", "fl",
	)
}

// defaultRules repairs splits the text extractor commonly introduces inside
// the anchored phrases.
func defaultRules() []Rule {
	return []Rule{
		// "One - Time" and "One Time" as printed on older layouts.
		{regexp.MustCompile(`(?i)\b(one)\s*-\s*(time)\b`), "$1-$2"},
		{regexp.MustCompile(`(?i)\b(one)\s+(time\s+charges)\b`), "$1-$2"},
		// "Wi-Fi Service" and "Wi Fi Service".
		{regexp.MustCompile(`(?i)\bwi[\s-]?fi(\s+service)\b`), "WiFi$1"},
		// "- $20.00" and "-$ 20.00" keep the sign next to the amount.
		{regexp.MustCompile(`-\s+\$`), "-$"},
		{regexp.MustCompile(`\$\s+(\d)`), "$$$1"},
	}
}

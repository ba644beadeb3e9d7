package formatter

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// UnifiedDiff returns a unified diff between original and modified, or an
// empty string when they are equal.
func UnifiedDiff(filename, original, modified string) (string, error) {
	if original == modified {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  diffContext,
	})
}

// ColorizeDiff styles the lines of a unified diff.
func ColorizeDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var b strings.Builder
	for _, l := range strings.SplitAfter(diff, "\n") {
		if l == "" {
			continue
		}
		switch {
		case strings.HasPrefix(l, "---"), strings.HasPrefix(l, "+++"):
			b.WriteString(fileStyle.Sprint(l))
		case strings.HasPrefix(l, "@@"):
			b.WriteString(lineStyle.Sprint(l))
		case strings.HasPrefix(l, "-"):
			b.WriteString(removedStyle.Sprint(l))
		case strings.HasPrefix(l, "+"):
			b.WriteString(addedStyle.Sprint(l))
		default:
			b.WriteString(l)
		}
	}
	return b.String()
}

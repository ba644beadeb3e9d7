package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnolang/modernize/internal/types"
)

var (
	rewriteStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	removedStyle    = color.New(color.FgRed)
	addedStyle      = color.New(color.FgGreen)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// rewriteFormatter is implemented per rule category.
type rewriteFormatter interface {
	RewriteTemplate() string
}

func getRewriteFormatter(category tt.Category) rewriteFormatter {
	switch category {
	case tt.CategoryModel:
		return &ModelRewriteFormatter{}
	default:
		return &GeneralRewriteFormatter{}
	}
}

// GenerateFormattedRewrites renders rewrites in a compiler-like layout, one
// block per rewrite.
func GenerateFormattedRewrites(rewrites []tt.Rewrite) string {
	var builder strings.Builder
	for _, rw := range rewrites {
		builder.WriteString(buildRewrite(rw, getRewriteFormatter(rw.Category)))
	}
	return builder.String()
}

type RewriteData struct {
	Rule            string
	Category        string
	Filename        string
	StartLine       int
	StartColumn     int
	MaxLineNumWidth int
	Padding         string
	Original        string
	Replacement     string
	Intent          string
}

func buildRewrite(rw tt.Rewrite, formatter rewriteFormatter) string {
	width := calculateMaxLineNumWidth(rw.End.Line)
	data := RewriteData{
		Rule:            rw.Rule,
		Category:        string(rw.Category),
		Filename:        rw.Filename,
		StartLine:       rw.Start.Line,
		StartColumn:     rw.Start.Column,
		MaxLineNumWidth: width,
		Padding:         strings.Repeat(" ", width+1),
		Original:        rw.Original,
		Replacement:     rw.Replacement,
		Intent:          rw.Intent.String(),
	}

	funcMap := template.FuncMap{
		"header": header,
		"change": change,
		"intent": intent,
	}
	tmpl := template.Must(template.New("rewrite").Funcs(funcMap).Parse(formatter.RewriteTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting rewrite: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule, category string, maxLineNumWidth int, filename string, line, column int) string {
	out := rewriteStyle.Sprint("rewrite: ")
	out += ruleStyle.Sprintf("%s", rule)
	if category != "" {
		out += fmt.Sprintf(" (%s)", category)
	}
	out += "\n"

	location := fmt.Sprintf("%d:%d", line, column)
	if filename != "" {
		location = filename + ":" + location
	}
	out += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	out += fileStyle.Sprint(location)
	return out
}

func change(original, replacement, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	for _, l := range strings.Split(original, "\n") {
		out += removedStyle.Sprintf("- ") + lineStyle.Sprintf("%s| ", padding[2:]) + removedStyle.Sprintf("%s\n", l)
	}
	for _, l := range strings.Split(replacement, "\n") {
		out += addedStyle.Sprintf("+ ") + lineStyle.Sprintf("%s| ", padding[2:]) + addedStyle.Sprintf("%s\n", l)
	}
	return out
}

func intent(padding, intent string) string {
	return lineStyle.Sprintf("%s= ", padding) + suggestionStyle.Sprint("intent: ") + intent + "\n"
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

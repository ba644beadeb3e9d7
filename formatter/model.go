package formatter

// ModelRewriteFormatter also shows the intent the replacement was chosen for.
type ModelRewriteFormatter struct{}

func (f *ModelRewriteFormatter) RewriteTemplate() string {
	return `{{header .Rule .Category .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{change .Original .Replacement .Padding -}}
{{intent .Padding .Intent}}
`
}

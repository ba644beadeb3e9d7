package formatter

type GeneralRewriteFormatter struct{}

func (f *GeneralRewriteFormatter) RewriteTemplate() string {
	return `{{header .Rule .Category .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{change .Original .Replacement .Padding}}
`
}

package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dshills/impress/internal/stories"
)

type templateRenderer struct {
	set map[Kind]*template.Template
}

func (r *templateRenderer) Render(kind Kind, data any) ([]byte, error) {
	tmpl, ok := r.set[kind]
	if !ok {
		return nil, fmt.Errorf("no template for view %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

var funcs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"excerpt": stories.Excerpt,
	"indent": func(n int, s string) string {
		pad := strings.Repeat(" ", n)
		return pad + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+pad)
	},
	"check": func(done bool) string {
		if done {
			return "x"
		}
		return " "
	},
	"hasImage": func(p *string) bool { return p != nil && *p != "" },
}

func parse(src map[Kind]string) map[Kind]*template.Template {
	out := make(map[Kind]*template.Template, len(src))
	for k, s := range src {
		out[k] = template.Must(template.New(string(k)).Funcs(funcs).Parse(s))
	}
	return out
}

var mdTemplates = parse(map[Kind]string{
	KindDay: `# {{ .Topic }}

## Day {{ .Day.Day }}: {{ .Day.Title }}

- [{{ check .Completed }}] completed
{{ range .Day.Approaches }}
- {{ . }}{{ end }}

**Progress:** {{ .Progress.Completed }}/{{ .Progress.Total }} ({{ .Progress.Percent }}%) · bloom {{ .Progress.Bloom }}
{{ if .Warning }}
> **Warning:** {{ .Warning }}
{{ end }}`,

	KindProgress: `## {{ .Topic }}

**Completed:** {{ .Completed }}/{{ .Total }} ({{ .Percent }}%)
{{ if .Done }}**All days complete.**{{ else }}**Next day:** {{ .NextDay }}{{ end }}
**Bloom:** {{ .Bloom }}
`,

	KindTopics: `# Guide topics
{{ range $i, $t := .Topics }}
{{ inc $i }}. {{ if eq $t $.Selected }}**{{ $t }}**{{ else }}{{ $t }}{{ end }}{{ end }}
`,

	KindStories: `# Stories of Inspiration

*Page {{ .Number }} of {{ .TotalPages }}*
{{ range .Stories }}
### #{{ .ID }} {{ .Name }}

{{ excerpt .Story 120 }}
{{ else }}
No stories on this page.
{{ end }}`,

	KindStory: `# {{ .Name }}

{{ .Story }}
{{ if hasImage .Image }}
*Includes an image.*
{{ end }}`,

	KindResource: `# {{ .Topic }}
{{ if .Cached }}
*Cached copy.*
{{ end }}
{{ .Body }}
{{ if .Patch }}
## Changes since last fetch

` + "```diff" + `
{{ .Patch }}` + "```" + `
{{ end }}`,

	KindResources: `# Resources
{{ range . }}
- {{ .Name }}{{ end }}
`,

	KindExamples: `# Example talks
{{ range . }}
- [{{ .Title }}]({{ .URL }}){{ end }}
`,

	KindSummary: `# Summary

<{{ .URL }}>

{{ .Summary }}
`,

	KindChat: `{{ range . }}**{{ .Sender }}:** {{ .Text }}

{{ end }}`,

	KindQuote:   "> {{ . }}\n",
	KindMessage: "{{ . }}\n",

	KindStatus: `**Server:** {{ .BaseURL }}
**Logged in:** {{ .LoggedIn }}
`,
})

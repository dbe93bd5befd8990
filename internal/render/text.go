package render

var textTemplates = parse(map[Kind]string{
	KindDay: `{{ .Topic }}
Day {{ .Day.Day }}: {{ .Day.Title }} [{{ check .Completed }}]
{{ range .Day.Approaches }}  - {{ . }}
{{ end }}Progress: {{ .Progress.Completed }}/{{ .Progress.Total }} ({{ .Progress.Percent }}%), bloom {{ .Progress.Bloom }}
{{ if .Warning }}warning: {{ .Warning }}
{{ end }}`,

	KindProgress: `{{ .Topic }}: {{ .Completed }}/{{ .Total }} ({{ .Percent }}%)
{{ if .Done }}all days complete{{ else }}next day: {{ .NextDay }}{{ end }}
bloom: {{ .Bloom }}
`,

	KindTopics: `{{ range $i, $t := .Topics }}{{ if eq $t $.Selected }}*{{ else }} {{ end }} {{ inc $i }}. {{ $t }}
{{ end }}`,

	KindStories: `page {{ .Number }}/{{ .TotalPages }}
{{ range .Stories }}#{{ .ID }} {{ .Name }}: {{ excerpt .Story 60 }}
{{ else }}no stories on this page
{{ end }}`,

	KindStory: `#{{ .ID }} {{ .Name }}{{ if hasImage .Image }} (image){{ end }}

{{ .Story }}
`,

	KindResource: `{{ .Topic }}{{ if .Cached }} (cached){{ end }}

{{ .Body }}
{{ if .Patch }}
changes since last fetch (+{{ .Inserted }} -{{ .Deleted }}):
{{ indent 2 .Patch }}
{{ end }}`,

	KindResources: `{{ range . }}{{ .Name }}
{{ end }}`,

	KindExamples: `{{ range $i, $e := . }}{{ inc $i }}. {{ $e.Title }}
   {{ $e.URL }}
{{ end }}`,

	KindSummary: `{{ .URL }}

{{ .Summary }}
`,

	KindChat: `{{ range . }}{{ .Sender }}> {{ .Text }}
{{ end }}`,

	KindQuote:   "{{ . }}\n",
	KindMessage: "{{ . }}\n",

	KindStatus: `server: {{ .BaseURL }}
logged in: {{ .LoggedIn }}
`,
})

// Package render formats command results as text, markdown, JSON or YAML.
package render

import (
	"fmt"

	"github.com/dshills/impress/internal/progress"
	"github.com/dshills/impress/internal/schema"
)

// Kind names a view.
type Kind string

const (
	KindDay       Kind = "day"
	KindProgress  Kind = "progress"
	KindTopics    Kind = "topics"
	KindStories   Kind = "stories"
	KindStory     Kind = "story"
	KindResource  Kind = "resource"
	KindResources Kind = "resources"
	KindExamples  Kind = "examples"
	KindSummary   Kind = "summary"
	KindChat      Kind = "chat"
	KindQuote     Kind = "quote"
	KindMessage   Kind = "message"
	KindStatus    Kind = "status"
)

// DayView is the guide screen: one day plus the topic's progress.
type DayView struct {
	Topic     string           `json:"topic" yaml:"topic"`
	Day       schema.Day       `json:"day" yaml:"day"`
	Completed bool             `json:"completed" yaml:"completed"`
	Position  int              `json:"position" yaml:"position"`
	Progress  progress.Summary `json:"progress" yaml:"progress"`
	// Warning reports a background save that failed; the local state was kept.
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// TopicsView lists guide topics with the selected one marked.
type TopicsView struct {
	Topics   []string `json:"topics" yaml:"topics"`
	Selected string   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// SummaryView is a video summary.
type SummaryView struct {
	URL     string `json:"url" yaml:"url"`
	Summary string `json:"summary" yaml:"summary"`
}

// Renderer formats a view into bytes for output.
type Renderer interface {
	Render(kind Kind, data any) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "text" (default), "md", "json", "yaml".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &templateRenderer{set: textTemplates}, nil
	case "md":
		return &templateRenderer{set: mdTemplates}, nil
	case "json":
		return &jsonRenderer{}, nil
	case "yaml":
		return &yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are text, md, json, yaml", format)
	}
}

// payload wraps bare strings so structured formats always emit an object.
func payload(kind Kind, data any) any {
	if s, ok := data.(string); ok {
		return map[string]string{string(kind): s}
	}
	return data
}

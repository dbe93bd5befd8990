// Package resources browses the generated resource guides and summarizes
// TED talks.
package resources

import (
	"fmt"
	"strings"
)

// Kind says how a resource topic is produced.
type Kind int

const (
	// KindSummarizer topics take a video URL from the user.
	KindSummarizer Kind = iota
	// KindRemote topics are generated by a server endpoint.
	KindRemote
	// KindStatic topics have fixed content.
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindSummarizer:
		return "summarizer"
	case KindRemote:
		return "remote"
	case KindStatic:
		return "static"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Topic is one entry of the resource menu.
type Topic struct {
	Name     string `json:"name" yaml:"name"`
	Kind     Kind   `json:"-" yaml:"-"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Content  string `json:"-" yaml:"-"`
}

// DefaultTopic is selected when none is given.
const DefaultTopic = "Ted Talk Summarization"

const googleResources = `Additional Google resources: Learn Faster, Study Smarter

Our product uses Gemini, Google's super smart AI, to help you with your journey! Gemini can answer your questions, summarize notes, and even turn your PDFs into podcasts! Check out [NotebookLM](https://notebooklm.google.com/) and the [Gemini](https://gemini.google.com/app) platform for more awesome AI tools.`

var catalog = []Topic{
	{Name: DefaultTopic, Kind: KindSummarizer},
	{Name: "Mentorship", Kind: KindRemote, Endpoint: "/generate-mentorship-guide"},
	{Name: "Women in Management", Kind: KindRemote, Endpoint: "/generate-resources"},
	{Name: "Scholarships", Kind: KindRemote, Endpoint: "/generate-scholarship-guide"},
	{Name: "Google Resources", Kind: KindStatic, Content: googleResources},
}

// List returns the resource topics in menu order.
func List() []Topic {
	out := make([]Topic, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks a topic up by name, ignoring case.
func Get(name string) (Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTopic
	}
	for _, t := range catalog {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	names := make([]string, len(catalog))
	for i, t := range catalog {
		names[i] = t.Name
	}
	return Topic{}, fmt.Errorf("unknown resource topic %q: valid topics are %s", name, strings.Join(names, ", "))
}

// Example is a suggested talk for the summarizer.
type Example struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

var examples = []Example{
	{"A guide to believing in yourself (but for real this time) - Catherine Reitman", "https://www.youtube.com/watch?v=jpRqbP9Nv9k"},
	{"Don't Believe Everything You Think - Lauren Weinstein", "https://www.youtube.com/watch?v=Xdhmgp4IUL0"},
	{"Get comfortable with being uncomfortable - Luvvie Ajayi Jones", "https://www.youtube.com/watch?v=QijH4UAqGD8"},
	{"The Likability Dilemma for Women Leaders - Robin Hauser", "https://www.youtube.com/watch?v=T2I4tus05hI"},
	{"Six behaviors to increase your confidence - Emily Jaenson", "https://www.youtube.com/watch?v=IitIl2C3Iy8"},
	{"What it takes to be a great leader - Roselinde Torres", "https://www.youtube.com/watch?v=aUYSDEYdmzw"},
	{"What makes you special? - Mariana Atencio", "https://www.youtube.com/watch?v=MY5SatbZMAo"},
	{"Why we have too few women leaders - Sheryl Sandberg", "https://www.youtube.com/watch?v=18uDutylDa4"},
	{"You are contagious - Vanessa Van Edwards", "https://www.youtube.com/watch?v=cef35Fk7YD8"},
}

// Examples returns the built-in talk suggestions.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

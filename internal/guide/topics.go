package guide

import (
	"fmt"
	"strconv"
	"strings"
)

// topics are the built-in 21-day guide goals, in display order. The server
// generates a guide only for these names.
var topics = []string{
	"Building Your Club",
	"Getting Certifications and Courses",
	"Building Confidence",
	"Recognizing Healthy Relationships",
	"Saving Your First $1,000",
	"Improving Communication Skills",
}

// DefaultTopic is selected when none is given.
var DefaultTopic = topics[0]

// Topics returns the built-in topics in display order.
func Topics() []string {
	out := make([]string, len(topics))
	copy(out, topics)
	return out
}

// TopicAt returns the topic at zero-based index i.
func TopicAt(i int) (string, error) {
	if i < 0 || i >= len(topics) {
		return "", fmt.Errorf("invalid goal index %d: must be 0-%d", i, len(topics)-1)
	}
	return topics[i], nil
}

// Resolve maps user input to a topic name. It accepts an exact or
// case-insensitive name, or the 1-based number shown by `guide topics`.
// Empty input resolves to DefaultTopic.
func Resolve(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return DefaultTopic, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		return TopicAt(n - 1)
	}
	for _, t := range topics {
		if strings.EqualFold(t, arg) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q: valid topics are %s", arg, strings.Join(topics, ", "))
}

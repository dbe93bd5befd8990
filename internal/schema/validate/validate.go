package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/impress/internal/schema"
)

// ErrNoGuide is returned when a guide response carries no daily_guide.
var ErrNoGuide = errors.New("response has no daily_guide")

// ErrNoContent is returned when a resource body is JSON without a usable guide field.
var ErrNoContent = errors.New("JSON resource body has no guide field")

// ParseGuide strips markdown fences, unmarshals a /get-guide response, and
// validates the day sequence.
func ParseGuide(raw []byte) (*schema.DailyGuide, error) {
	cleaned := stripFences(string(raw))

	var resp schema.GuideResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if resp.DailyGuide == nil {
		return nil, ErrNoGuide
	}
	if err := Days(resp.DailyGuide.Guide); err != nil {
		return nil, err
	}
	return resp.DailyGuide, nil
}

// Days checks that indices start at 1 or above, strictly ascend, and that
// every day has a title.
func Days(days []schema.Day) error {
	prev := 0
	for i, d := range days {
		prefix := fmt.Sprintf("guide[%d]", i)
		if d.Day < 1 {
			return fmt.Errorf("%s: day %d must be ≥ 1", prefix, d.Day)
		}
		if d.Day <= prev {
			return fmt.Errorf("%s: day %d must be greater than previous day %d", prefix, d.Day, prev)
		}
		if strings.TrimSpace(d.Title) == "" {
			return fmt.Errorf("%s: title is required", prefix)
		}
		prev = d.Day
	}
	return nil
}

// ResourceContent extracts guide text from a resource endpoint body.
// A JSON object with a non-empty "guide" field yields that field; a body that
// is not JSON at all is returned as markdown unchanged. Any other JSON value,
// or a guide that is empty, null, false or 0, is ErrNoContent so callers can
// retry.
func ResourceContent(raw []byte) (string, error) {
	if !json.Valid(raw) {
		return string(raw), nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("JSON parse failed: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", ErrNoContent
	}
	switch v := obj["guide"].(type) {
	case nil:
		return "", ErrNoContent
	case string:
		if v == "" {
			return "", ErrNoContent
		}
		return v, nil
	case bool:
		if !v {
			return "", ErrNoContent
		}
	case float64:
		if v == 0 {
			return "", ErrNoContent
		}
	}
	b, err := json.MarshalIndent(obj["guide"], "", "  ")
	if err != nil {
		return "", fmt.Errorf("re-encoding guide field: %w", err)
	}
	return string(b), nil
}

// stripFences removes leading/trailing markdown code fences (```json ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx >= 0 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		idx := strings.LastIndex(s, "\n```")
		if idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

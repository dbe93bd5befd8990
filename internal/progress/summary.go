package progress

import "github.com/dshills/impress/internal/schema"

// Bloom bounds. The bloom level starts at BloomMin, grows by BloomStep per
// completed day, and is clamped at BloomMax.
const (
	BloomMin  = 20
	BloomStep = 2
	BloomMax  = 50
)

// Summary describes completion of one topic's guide.
type Summary struct {
	Topic     string `json:"topic" yaml:"topic"`
	Completed int    `json:"completed" yaml:"completed"`
	Total     int    `json:"total" yaml:"total"`
	Percent   int    `json:"percent" yaml:"percent"`
	// NextDay is the first incomplete day index, or 0 when all are done.
	NextDay int  `json:"next_day" yaml:"next_day"`
	Done    bool `json:"done" yaml:"done"`
	Bloom   int  `json:"bloom" yaml:"bloom"`
}

// Summarize computes a Summary. Only completed indices that belong to days
// are counted.
func Summarize(topic string, days []schema.Day, completed []int) Summary {
	done := make(map[int]bool, len(completed))
	for _, d := range completed {
		done[d] = true
	}

	s := Summary{Topic: topic, Total: len(days)}
	for _, d := range days {
		if done[d.Day] {
			s.Completed++
		} else if s.NextDay == 0 {
			s.NextDay = d.Day
		}
	}
	if s.Total > 0 {
		s.Percent = s.Completed * 100 / s.Total
	}
	s.Done = s.Total > 0 && s.Completed == s.Total
	s.Bloom = Bloom(s.Completed)
	return s
}

// Bloom returns the growth level for n completed days: 20 + 2n, clamped to [20, 50].
func Bloom(n int) int {
	b := BloomMin + BloomStep*n
	if b < BloomMin {
		return BloomMin
	}
	if b > BloomMax {
		return BloomMax
	}
	return b
}

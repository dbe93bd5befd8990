// Package home supplies the motivational quote shown on the landing screen.
package home

import "math/rand/v2"

var quotes = []string{
	"Don't let anyone rob you of your imagination, your creativity, or your curiosity. – Mae Jemison",
	"I was taught that the way of progress was neither swift nor easy. – Marie Curie",
	"Optimism is the faith that leads to achievement. Nothing can be done without hope and confidence. – Helen Keller",
	"Success isn’t about how much money you make; it’s about the difference you make in people’s lives. – Michelle Obama",
	"Do not wait for someone else to come and speak for you. It's you who can change the world. – Malala Yousafzai",
}

// Quotes returns every built-in quote.
func Quotes() []string {
	out := make([]string, len(quotes))
	copy(out, quotes)
	return out
}

// Quote picks one quote uniformly. A nil r uses the global source.
func Quote(r *rand.Rand) string {
	if r == nil {
		return quotes[rand.IntN(len(quotes))]
	}
	return quotes[r.IntN(len(quotes))]
}

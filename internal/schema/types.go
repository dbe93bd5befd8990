package schema

// Day is one step of a 21-day guide as served by GET /get-guide/{topic}.
type Day struct {
	Day        int      `json:"day" yaml:"day"`
	Title      string   `json:"title" yaml:"title"`
	Approaches []string `json:"approaches" yaml:"approaches"`
	// Completed mirrors the server's GuideEntry flag. The tracker ignores it
	// and reconciles against UserProgress instead.
	Completed bool `json:"completed,omitempty" yaml:"completed,omitempty"`
}

// DailyGuide is the guide payload for one topic.
type DailyGuide struct {
	Goal  string `json:"goal" yaml:"goal"`
	Guide []Day  `json:"guide" yaml:"guide"`
}

// GuideResponse is the envelope returned by GET /get-guide/{topic}.
// DailyGuide is nil when the server has no guide for the topic.
type GuideResponse struct {
	DailyGuide *DailyGuide `json:"daily_guide"`
}

// DayStatus is a single per-day completion record.
type DayStatus struct {
	Day       int  `json:"day" yaml:"day"`
	Completed bool `json:"completed" yaml:"completed"`
}

// Progress maps a topic name to its per-day completion records.
type Progress map[string][]DayStatus

// CompletedDays returns the day indices recorded as completed for topic.
func (p Progress) CompletedDays(topic string) []int {
	var out []int
	for _, st := range p[topic] {
		if st.Completed {
			out = append(out, st.Day)
		}
	}
	return out
}

// ProgressRequest is the body of POST /get-user-progress.
type ProgressRequest struct {
	UserID int64 `json:"user_id,omitempty"`
}

// ProgressResponse is the envelope returned by POST /get-user-progress.
type ProgressResponse struct {
	Progress Progress `json:"progress"`
}

// DayCompletion is the body of POST /update-day-completion.
type DayCompletion struct {
	UserID    int64  `json:"user_id,omitempty"`
	Topic     string `json:"topic"`
	Day       int    `json:"day"`
	Completed bool   `json:"completed"`
}

// Credentials is the body of POST /login and POST /signup.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Story is an approved story as served by /approved-stories and /story/{id}.
// Image, when present, is a data URI ("data:<mime>;base64,<payload>").
type Story struct {
	ID       int64   `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Story    string  `json:"story" yaml:"story"`
	Image    *string `json:"image" yaml:"image,omitempty"`
	MIMEType *string `json:"mime_type" yaml:"mime_type,omitempty"`
}

// SummarizeRequest is the body of POST /summarize-video.
type SummarizeRequest struct {
	URL string `json:"url"`
}

// SummarizeResponse is the envelope returned by POST /summarize-video.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// ChatRequest is the body of POST /chatbot.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the envelope returned by POST /chatbot.
type ChatResponse struct {
	Response string `json:"response"`
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the generic {"error": ...} failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

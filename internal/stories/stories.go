// Package stories lists, shows and submits entries of the story gallery.
package stories

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/impress/internal/api"
	"github.com/dshills/impress/internal/attach"
	"github.com/dshills/impress/internal/schema"
)

// PerPage is the gallery page size.
const PerPage = 9

// DefaultImageMIME is assumed for images the server stored without a type.
const DefaultImageMIME = "image/jpeg"

var (
	// ErrStoryNotFound is returned when a story does not exist or is not approved.
	ErrStoryNotFound = errors.New("story not found")
	// ErrMissingFields is returned when a submission lacks a required field.
	ErrMissingFields = errors.New("all fields except image are required")
	// ErrNoImage is returned by DecodeImage for a story without an image.
	ErrNoImage = errors.New("story has no image")
)

// Client is the part of the API the gallery uses.
type Client interface {
	ApprovedStories(ctx context.Context) ([]schema.Story, error)
	Story(ctx context.Context, id int64) (*schema.Story, error)
	SubmitStory(ctx context.Context, form api.StoryForm) (string, error)
}

// Service wraps Client with validation and error mapping.
type Service struct {
	client Client
	logger *zap.Logger
}

// New returns a Service. A nil logger is replaced with a no-op logger.
func New(client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// List returns the approved stories in server order.
func (s *Service) List(ctx context.Context) ([]schema.Story, error) {
	list, err := s.client.ApprovedStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	s.logger.Debug("stories listed", zap.Int("count", len(list)))
	return list, nil
}

// Get returns one approved story.
func (s *Service) Get(ctx context.Context, id int64) (*schema.Story, error) {
	st, err := s.client.Story(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, fmt.Errorf("story %d: %w", id, ErrStoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching story %d: %w", id, err)
	}
	return st, nil
}

// Submission is a story to submit. ImagePath is optional.
type Submission struct {
	Name      string
	Email     string
	Story     string
	ImagePath string
}

// Submit validates sub, loads its image if any, and posts it. The returned
// message is the server's acknowledgement.
func (s *Service) Submit(ctx context.Context, sub Submission) (string, error) {
	form := api.StoryForm{
		Name:  strings.TrimSpace(sub.Name),
		Email: strings.TrimSpace(sub.Email),
		Story: strings.TrimSpace(sub.Story),
	}
	if form.Name == "" || form.Email == "" || form.Story == "" {
		return "", ErrMissingFields
	}
	if sub.ImagePath != "" {
		img, err := attach.Load(sub.ImagePath)
		if err != nil {
			return "", err
		}
		form.Image = img
		s.logger.Info("attaching image",
			zap.String("name", img.Name),
			zap.String("mime", img.MIME),
			zap.String("hash", img.Hash),
		)
	}
	msg, err := s.client.SubmitStory(ctx, form)
	if err != nil {
		return "", fmt.Errorf("submitting story: %w", err)
	}
	return msg, nil
}

// Page is one page of the gallery.
type Page struct {
	Stories    []schema.Story `json:"stories" yaml:"stories"`
	Number     int            `json:"page" yaml:"page"`
	TotalPages int            `json:"total_pages" yaml:"total_pages"`
	HasPrev    bool           `json:"has_prev" yaml:"has_prev"`
	HasNext    bool           `json:"has_next" yaml:"has_next"`
}

// Paginate returns 1-based page number of list. perPage <= 0 uses PerPage.
// A page outside the range yields an empty Stories slice.
func Paginate(list []schema.Story, page, perPage int) Page {
	if perPage <= 0 {
		perPage = PerPage
	}
	total := (len(list) + perPage - 1) / perPage
	p := Page{
		Stories:    []schema.Story{},
		Number:     page,
		TotalPages: total,
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
	if page < 1 || page > total {
		return p
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(list))
	p.Stories = list[start:end]
	return p
}

// DecodeImage splits a data URI into its MIME type and bytes.
func DecodeImage(st schema.Story) (mime string, data []byte, err error) {
	if st.Image == nil || *st.Image == "" {
		return "", nil, ErrNoImage
	}
	uri := *st.Image
	payload := uri
	mime = DefaultImageMIME
	if rest, ok := strings.CutPrefix(uri, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return "", nil, fmt.Errorf("story %d: malformed image data URI", st.ID)
		}
		if m, _, _ := strings.Cut(header, ";"); m != "" {
			mime = m
		}
		payload = body
	} else if st.MIMEType != nil && *st.MIMEType != "" {
		mime = *st.MIMEType
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("story %d: decoding image: %w", st.ID, err)
	}
	return mime, data, nil
}

// Excerpt returns the first n runes of text, followed by "..." when cut.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if n <= 0 || len(r) <= n {
		return text
	}
	return strings.TrimRight(string(r[:n]), " ") + "..."
}

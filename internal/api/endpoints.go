package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/dshills/impress/internal/attach"
	"github.com/dshills/impress/internal/schema"
	"github.com/dshills/impress/internal/schema/validate"
)

// ErrNoGuide is returned by Guide when the server answers without a daily_guide.
var ErrNoGuide = validate.ErrNoGuide

// Ping calls the sample data endpoint and returns its message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var out schema.MessageResponse
	if err := c.getJSON(ctx, "/api/data", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Signup registers a new account and returns the server's message.
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	var out schema.MessageResponse
	if err := c.postJSON(ctx, "/signup", schema.Credentials{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login authenticates and leaves the session cookie in the jar. The root
// path is tried first and /login second, matching the web front end; the
// /login error is the one reported.
func (c *Client) Login(ctx context.Context, email, password string) error {
	creds := schema.Credentials{Email: email, Password: password}
	err := c.postJSON(ctx, "/", creds, nil)
	if err == nil {
		return nil
	}
	c.logger.Debug("login at / failed, trying /login", zap.Error(err))
	return c.postJSON(ctx, "/login", creds, nil)
}

// Logout clears the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/logout", "", nil)
	return err
}

// Guide fetches the 21-day guide for topic.
func (c *Client) Guide(ctx context.Context, topic string) (*schema.DailyGuide, error) {
	path := "/get-guide/" + url.PathEscape(topic)
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	g, err := validate.ParseGuide(body)
	if err != nil {
		if errors.Is(err, validate.ErrNoGuide) {
			return nil, err
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return g, nil
}

// UserProgress fetches the completion map for every topic.
func (c *Client) UserProgress(ctx context.Context) (schema.Progress, error) {
	var out schema.ProgressResponse
	if err := c.postJSON(ctx, "/get-user-progress", schema.ProgressRequest{UserID: c.userID}, &out); err != nil {
		return nil, err
	}
	if out.Progress == nil {
		return schema.Progress{}, nil
	}
	return out.Progress, nil
}

// UpdateDayCompletion persists one day's completion flag.
func (c *Client) UpdateDayCompletion(ctx context.Context, dc schema.DayCompletion) error {
	if dc.UserID == 0 {
		dc.UserID = c.userID
	}
	var out schema.MessageResponse
	return c.postJSON(ctx, "/update-day-completion", dc, &out)
}

// ApprovedStories lists the stories visible in the gallery.
func (c *Client) ApprovedStories(ctx context.Context) ([]schema.Story, error) {
	var out []schema.Story
	if err := c.getJSON(ctx, "/approved-stories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Story fetches one approved story.
func (c *Client) Story(ctx context.Context, id int64) (*schema.Story, error) {
	var out schema.Story
	if err := c.getJSON(ctx, "/story/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoryForm is a story submission. Image is optional.
type StoryForm struct {
	Name  string
	Email string
	Story string
	Image *attach.Attachment
}

// SubmitStory posts a story as multipart form data and returns the server's
// message. Submitted stories await moderation before they are listed.
func (c *Client) SubmitStory(ctx context.Context, form StoryForm) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{{"name", form.Name}, {"email", form.Email}, {"yourStory", form.Story}}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("writing form field %s: %w", f[0], err)
		}
	}
	if form.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, form.Image.Name))
		h.Set("Content-Type", form.Image.MIME)
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return "", fmt.Errorf("writing image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/submit-story", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", err
	}
	var out schema.MessageResponse
	if err := decode(http.MethodPost, "/submit-story", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SummarizeVideo asks the server to summarize a YouTube video.
func (c *Client) SummarizeVideo(ctx context.Context, videoURL string) (string, error) {
	var out schema.SummarizeResponse
	if err := c.postJSON(ctx, "/summarize-video", schema.SummarizeRequest{URL: videoURL}, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Chat sends one message to the companion and returns its reply. The server
// keeps the conversation history in the session.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out schema.ChatResponse
	if err := c.postJSON(ctx, "/chatbot", schema.ChatRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Text fetches path and returns the body verbatim. Resource guides are
// served this way.
func (c *Client) Text(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, "", nil)
}

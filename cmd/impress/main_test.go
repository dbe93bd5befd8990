package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/impress/internal/api"
	"github.com/dshills/impress/internal/api/apitest"
	"github.com/dshills/impress/internal/auth"
	"github.com/dshills/impress/internal/guide"
	"github.com/dshills/impress/internal/render"
	"github.com/dshills/impress/internal/resources"
)

// harness runs the CLI against a fake backend with an isolated state dir.
type harness struct {
	t        *testing.T
	srv      *apitest.Server
	stateDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"BASE_URL", "STATE_DIR", "FORMAT", "USER_ID", "LOG_LEVEL", "TIMEOUT"} {
		t.Setenv("IMPRESS_"+k, "")
		os.Unsetenv("IMPRESS_" + k)
	}
	return &harness{t: t, srv: apitest.New(t), stateDir: t.TempDir()}
}

func (h *harness) run(args ...string) (stdout, stderr string, code int) {
	h.t.Helper()
	var out, errb bytes.Buffer
	full := append([]string{"--base-url", h.srv.URL, "--state-dir", h.stateDir}, args...)
	code = execute(context.Background(), full, &out, &errb)
	return out.String(), errb.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errs, code := h.run(args...)
	if code != 0 {
		h.t.Fatalf("impress %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), code, out, errs)
	}
	return out
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "--email", "maya@example.com", "--password", "bloom")
}

func decodeDay(t *testing.T, out string) render.DayView {
	t.Helper()
	var v render.DayView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	return v
}

// --- Tests ---

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	if code := execute(context.Background(), []string{"version"}, &out, &out); code != 0 {
		t.Fatalf("exit %d: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "impress dev") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("ping"); out != "Hello from Flask!\n" {
		t.Errorf("got %q", out)
	}
}

func TestPing_Unreachable(t *testing.T) {
	h := newHarness(t)
	h.srv.Close()
	_, _, code := h.run("ping")
	if code != exitRemote {
		t.Errorf("expected exit %d, got %d", exitRemote, code)
	}
}

func TestBadFormat(t *testing.T) {
	h := newHarness(t)
	_, errs, code := h.run("--format", "html", "ping")
	if code != exitLocal {
		t.Errorf("expected exit %d, got %d (%s)", exitLocal, code, errs)
	}
}

func TestUnknownFlag(t *testing.T) {
	h := newHarness(t)
	if _, _, code := h.run("ping", "--nope"); code != exitInput {
		t.Errorf("expected exit %d, got %d", exitInput, code)
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	h := newHarness(t)
	_, errs, code := h.run("signup", "--email", "new@example.com", "--password", "a", "--confirm", "b")
	if code != exitInput {
		t.Errorf("expected exit %d, got %d", exitInput, code)
	}
	if !strings.Contains(errs, "passwords do not match") {
		t.Errorf("stderr %q", errs)
	}
}

func TestSignup_Success(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("signup", "--email", "new@example.com", "--password", "pw", "--confirm", "pw")
	if !strings.Contains(out, "User registered successfully") {
		t.Errorf("got %q", out)
	}
}

func TestLogin_Invalid(t *testing.T) {
	h := newHarness(t)
	_, _, code := h.run("login", "--email", "maya@example.com", "--password", "wrong")
	if code != exitAuth {
		t.Errorf("expected exit %d, got %d", exitAuth, code)
	}
}

func TestStatus_LoginLogout(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("status"); !strings.Contains(out, "logged in: false") {
		t.Errorf("before login: %q", out)
	}
	h.login()
	if out := h.mustRun("status"); !strings.Contains(out, "logged in: true") {
		t.Errorf("after login: %q", out)
	}
	h.mustRun("logout")
	if out := h.mustRun("status"); !strings.Contains(out, "logged in: false") {
		t.Errorf("after logout: %q", out)
	}
}

func TestGuide_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide("Building Your Club", 21)
	if _, _, code := h.run("guide", "show"); code != exitAuth {
		t.Errorf("expected exit %d, got %d", exitAuth, code)
	}
}

func TestGuide_ShowStartsAtFirstIncomplete(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide("Building Confidence", 21)
	h.srv.MarkDone("Building Confidence", 1, 2)
	h.login()

	v := decodeDay(t, h.mustRun("--format", "json", "guide", "show", "3"))
	if v.Topic != "Building Confidence" || v.Day.Day != 3 || v.Completed {
		t.Errorf("unexpected view %+v", v)
	}
	if v.Progress.Completed != 2 || v.Progress.Bloom != 24 {
		t.Errorf("unexpected progress %+v", v.Progress)
	}
}

func TestGuide_ShowDay(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide(guide.DefaultTopic, 5)
	h.login()
	out := h.mustRun("guide", "show", "--day", "4")
	if !strings.Contains(out, "Day 4: Step 4 [ ]") {
		t.Errorf("got %q", out)
	}
	if _, _, code := h.run("guide", "show", "--day", "9"); code != exitInput {
		t.Errorf("expected exit %d for unknown day, got %d", exitInput, code)
	}
}

func TestGuide_UnknownTopic(t *testing.T) {
	h := newHarness(t)
	if _, _, code := h.run("guide", "show", "Juggling"); code != exitInput {
		t.Errorf("expected exit %d, got %d", exitInput, code)
	}
}

func TestGuide_TogglePersists(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide(guide.DefaultTopic, 5)
	h.login()

	v := decodeDay(t, h.mustRun("--format", "json", "guide", "toggle", "1"))
	if !v.Completed || v.Day.Day != 1 || v.Position != 1 || v.Warning != "" {
		t.Errorf("unexpected view %+v", v)
	}
	if !h.srv.Completed(guide.DefaultTopic, 1) {
		t.Error("server did not record completion")
	}

	v = decodeDay(t, h.mustRun("--format", "json", "guide", "toggle", "1"))
	if v.Completed {
		t.Errorf("second toggle should uncheck: %+v", v)
	}
	if h.srv.Completed(guide.DefaultTopic, 1) {
		t.Error("server still records completion")
	}
}

func TestGuide_TogglePersistFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide(guide.DefaultTopic, 5)
	h.login()
	h.srv.Mu.Lock()
	h.srv.Fail["POST /update-day-completion"] = 503
	h.srv.Mu.Unlock()

	out, errs, code := h.run("--format", "json", "guide", "toggle", "2")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, errs)
	}
	v := decodeDay(t, out)
	if !v.Completed || !strings.Contains(v.Warning, "503") {
		t.Errorf("unexpected view %+v", v)
	}
	if !strings.Contains(errs, "failed to update day completion status") {
		t.Errorf("failure not logged: %q", errs)
	}
}

func TestGuide_NextPrevUseCursor(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide(guide.DefaultTopic, 3)
	h.login()

	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "next")); v.Day.Day != 2 {
		t.Errorf("next: got day %d", v.Day.Day)
	}
	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "next")); v.Day.Day != 3 {
		t.Errorf("next: got day %d", v.Day.Day)
	}
	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "next")); v.Day.Day != 3 {
		t.Errorf("next at end: got day %d", v.Day.Day)
	}
	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "prev")); v.Day.Day != 2 {
		t.Errorf("prev: got day %d", v.Day.Day)
	}
	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "show")); v.Day.Day != 2 {
		t.Errorf("show after prev: got day %d", v.Day.Day)
	}
}

func TestGuide_ToggleAdvancesFromSavedCursor(t *testing.T) {
	h := newHarness(t)
	h.srv.SetGuide(guide.DefaultTopic, 5)
	h.login()

	for range 3 {
		h.mustRun("guide", "next")
	}
	v := decodeDay(t, h.mustRun("--format", "json", "guide", "toggle", "4"))
	if !v.Completed || v.Day.Day != 4 || v.Position != 4 {
		t.Errorf("toggle: unexpected view %+v", v)
	}
	if v := decodeDay(t, h.mustRun("--format", "json", "guide", "show")); v.Day.Day != 5 || v.Position != 4 {
		t.Errorf("show after toggle: got day %d position %d, want day 5 position 4", v.Day.Day, v.Position)
	}
}

func TestGuide_Topics(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("guide", "topics")
	if !strings.Contains(out, "* 1. Building Your Club") || !strings.Contains(out, "5. Saving Your First $1,000") {
		t.Errorf("got %q", out)
	}
}

func TestStories_ListShowSubmit(t *testing.T) {
	h := newHarness(t)
	h.srv.Stories = []apitest.StoredStory{
		{ID: 1, Name: "Ada", Story: "I built a robot club.", Approved: true, Image: []byte("\x89PNG\r\n\x1a\nxx")},
	}

	if out := h.mustRun("stories", "list"); !strings.Contains(out, "#1 Ada: I built a robot club.") {
		t.Errorf("list: %q", out)
	}

	img := filepath.Join(t.TempDir(), "ada.png")
	out := h.mustRun("stories", "show", "1", "--save-image", img)
	if !strings.Contains(out, "I built a robot club.") {
		t.Errorf("show: %q", out)
	}
	if data, err := os.ReadFile(img); err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("saved image: %v %q", err, data)
	}

	if _, _, code := h.run("stories", "show", "7"); code != exitInput {
		t.Errorf("missing story: expected exit %d, got %d", exitInput, code)
	}

	storyFile := filepath.Join(t.TempDir(), "story.txt")
	if err := os.WriteFile(storyFile, []byte("From shy to speaker.\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out = h.mustRun("stories", "submit", "--name", "Maya", "--email", "maya@example.com", "--story-file", storyFile)
	if !strings.Contains(out, "Story submitted successfully!") {
		t.Errorf("submit: %q", out)
	}
	h.srv.Mu.Lock()
	got := h.srv.Stories[len(h.srv.Stories)-1].Story
	h.srv.Mu.Unlock()
	if got != "From shy to speaker." {
		t.Errorf("stored story %q", got)
	}

	if _, _, code := h.run("stories", "submit", "--name", "Maya"); code != exitInput {
		t.Errorf("missing fields: expected exit %d, got %d", exitInput, code)
	}
}

func TestResources(t *testing.T) {
	h := newHarness(t)
	h.srv.Resources["/generate-mentorship-guide"] = `{"guide": "Find a mentor."}`

	if out := h.mustRun("resources", "list"); !strings.Contains(out, "Scholarships") {
		t.Errorf("list: %q", out)
	}
	if out := h.mustRun("resources", "examples"); !strings.Contains(out, "youtube.com") {
		t.Errorf("examples: %q", out)
	}
	if out := h.mustRun("resources", "show", "Mentorship"); !strings.Contains(out, "Find a mentor.") {
		t.Errorf("show: %q", out)
	}
	if out := h.mustRun("resources", "show", "Mentorship"); !strings.Contains(out, "(cached)") {
		t.Errorf("second show not cached: %q", out)
	}

	h.srv.Mu.Lock()
	h.srv.Resources["/generate-mentorship-guide"] = `{"guide": "Find two mentors."}`
	h.srv.Mu.Unlock()
	if out := h.mustRun("resources", "show", "Mentorship", "--refresh"); !strings.Contains(out, "changes since last fetch") {
		t.Errorf("refresh: %q", out)
	}

	if _, _, code := h.run("resources", "show", "Cooking"); code != exitInput {
		t.Errorf("unknown topic: expected exit %d, got %d", exitInput, code)
	}
}

func TestResources_Summarize(t *testing.T) {
	h := newHarness(t)
	url := resources.Examples()[0].URL
	h.srv.Summaries[url] = "Believe in yourself."

	if out := h.mustRun("resources", "summarize", url); !strings.Contains(out, "Believe in yourself.") {
		t.Errorf("got %q", out)
	}
	if _, _, code := h.run("resources", "summarize", "https://www.youtube.com/watch?v=unknown"); code != exitRemote {
		t.Errorf("expected exit %d, got %d", exitRemote, code)
	}
}

func TestChat_MessageAndHistory(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("chat", "how", "do", "I", "start?"); !strings.Contains(out, "how do I start?") {
		t.Errorf("chat: %q", out)
	}
	out := h.mustRun("chat", "history")
	for _, want := range []string{"bot> Hello! How can I assist you today?", "user> how do I start?"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
	h.mustRun("chat", "clear")
	if out := h.mustRun("chat", "history"); strings.Contains(out, "user>") {
		t.Errorf("history not cleared:\n%s", out)
	}
}

func TestQuote(t *testing.T) {
	var out bytes.Buffer
	if code := execute(context.Background(), []string{"quote"}, &out, &out); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), " – ") {
		t.Errorf("got %q", out.String())
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{codeError(exitLocal, "x"), exitLocal},
		{fmt.Errorf("wrapped: %w", auth.ErrNotLoggedIn), exitAuth},
		{&api.Error{Status: 401}, exitAuth},
		{&api.Error{Status: 500}, exitRemote},
		{guide.ErrUnknownDay, exitInput},
		{guide.ErrGuideNotFound, exitRemote},
		{errors.New("boom"), exitGeneric},
	}
	for _, tc := range cases {
		if got := exitCodeFor(tc.err); got != tc.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

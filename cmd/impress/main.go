package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"

	"github.com/dshills/impress/internal/api"
	"github.com/dshills/impress/internal/attach"
	"github.com/dshills/impress/internal/auth"
	"github.com/dshills/impress/internal/guide"
	"github.com/dshills/impress/internal/resources"
	"github.com/dshills/impress/internal/schema/validate"
	"github.com/dshills/impress/internal/stories"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// Exit codes.
const (
	exitGeneric = 1
	exitAuth    = 2
	exitInput   = 3
	exitLocal   = 4
	exitRemote  = 5
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	c.close()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCodeFor(err)
}

// exitCodeFor maps an error to its exit code.
func exitCodeFor(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}

	switch {
	case errors.Is(err, auth.ErrNotLoggedIn),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, api.ErrUnauthorized):
		return exitAuth
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, stories.ErrMissingFields),
		errors.Is(err, stories.ErrStoryNotFound),
		errors.Is(err, stories.ErrNoImage),
		errors.Is(err, attach.ErrNotImage),
		errors.Is(err, resources.ErrEmptyURL),
		errors.Is(err, resources.ErrNotFetchable),
		errors.Is(err, guide.ErrUnknownDay),
		errors.Is(err, os.ErrNotExist):
		return exitInput
	case errors.Is(err, guide.ErrGuideNotFound),
		errors.Is(err, validate.ErrNoContent),
		errors.Is(err, resources.ErrFetchFailed),
		errors.Is(err, resources.ErrSummarizeFailed):
		return exitRemote
	}

	var ae *api.Error
	if errors.As(err, &ae) {
		return exitRemote
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return exitRemote
	}
	return exitGeneric
}

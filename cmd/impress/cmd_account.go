package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/impress/internal/home"
	"github.com/dshills/impress/internal/render"
)

// credentialFlags holds the flags shared by signup and login.
type credentialFlags struct {
	email    string
	password string
	confirm  string
}

// ask fills empty fields with survey prompts.
func (f *credentialFlags) ask(withConfirm bool) error {
	var qs []*survey.Question
	if f.email == "" {
		qs = append(qs, &survey.Question{Name: "email", Prompt: &survey.Input{Message: "Email:"}, Validate: survey.Required})
	}
	if f.password == "" {
		qs = append(qs, &survey.Question{Name: "password", Prompt: &survey.Password{Message: "Password:"}, Validate: survey.Required})
	}
	if withConfirm && f.confirm == "" {
		qs = append(qs, &survey.Question{Name: "confirm", Prompt: &survey.Password{Message: "Confirm password:"}})
	}
	if len(qs) == 0 {
		return nil
	}
	answers := struct {
		Email    string `survey:"email"`
		Password string `survey:"password"`
		Confirm  string `survey:"confirm"`
	}{f.email, f.password, f.confirm}
	if err := survey.Ask(qs, &answers); err != nil {
		return codeError(exitInput, "reading credentials: %s", err)
	}
	f.email, f.password, f.confirm = answers.Email, answers.Password, answers.Confirm
	return nil
}

func (c *cli) signupCmd() *cobra.Command {
	var flags credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.ask(true); err != nil {
				return err
			}
			msg, err := c.app.auth.Signup(cmd.Context(), flags.email, flags.password, flags.confirm)
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindMessage, msg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.email, "email", "", "Account email")
	f.StringVar(&flags.password, "password", "", "Account password (prompted when omitted)")
	f.StringVar(&flags.confirm, "confirm", "", "Password confirmation (prompted when omitted)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var flags credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.ask(false); err != nil {
				return err
			}
			if err := c.app.auth.Login(cmd.Context(), flags.email, flags.password); err != nil {
				return err
			}
			return c.render(cmd, render.KindMessage, "Logged in as "+flags.email)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.email, "email", "", "Account email")
	f.StringVar(&flags.password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear local state",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("local session cleared, but: %w", err)
			}
			return c.render(cmd, render.KindMessage, "Logged out")
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.auth.Status(cmd.Context())
			if err != nil {
				return codeError(exitLocal, "reading session: %s", err)
			}
			return c.render(cmd, render.KindStatus, st)
		},
	}
}

func (c *cli) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := c.app.client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindMessage, msg)
		},
	}
}

func (c *cli) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "quote",
		Short:       "Print a motivational quote",
		Args:        exactArgs(0),
		Annotations: map[string]string{noApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.render(cmd, render.KindQuote, home.Quote(nil))
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        exactArgs(0),
		Annotations: map[string]string{noApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "impress", version)
			return err
		},
	}
}

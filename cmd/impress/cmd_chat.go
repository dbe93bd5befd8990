package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dshills/impress/internal/chat"
	"github.com/dshills/impress/internal/render"
)

func (c *cli) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Talk to the companion; starts a session when no message is given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := chat.New(c.app.client, c.app.store, c.app.logger.Named("chat"))
			if len(args) > 0 {
				reply, ok, err := conv.Send(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if !ok {
					return codeError(exitInput, "message is empty")
				}
				return c.render(cmd, render.KindMessage, reply)
			}
			return c.repl(cmd, conv)
		},
	}
	cmd.AddCommand(c.chatHistoryCmd(), c.chatClearCmd())
	return cmd
}

func (c *cli) repl(cmd *cobra.Command, conv *chat.Conversation) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "bot>", chat.Greeting)
	for {
		var line string
		err := survey.AskOne(&survey.Input{Message: "you>"}, &line)
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(line) == "/quit" {
			return nil
		}
		reply, ok, err := conv.Send(cmd.Context(), line)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			continue
		}
		if ok {
			fmt.Fprintln(out, "bot>", reply)
		}
	}
}

func (c *cli) chatHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the saved transcript",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			msgs, err := chat.History(cmd.Context(), c.app.store, limit)
			if err != nil {
				return codeError(exitLocal, "reading transcript: %s", err)
			}
			return c.render(cmd, render.KindChat, msgs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the newest N lines")
	return cmd
}

func (c *cli) chatClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved transcript",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := chat.Clear(cmd.Context(), c.app.store); err != nil {
				return codeError(exitLocal, "clearing transcript: %s", err)
			}
			return c.render(cmd, render.KindMessage, "Transcript cleared")
		},
	}
}

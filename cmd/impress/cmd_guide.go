package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/impress/internal/guide"
	"github.com/dshills/impress/internal/render"
	"github.com/dshills/impress/internal/store"
)

func (c *cli) guideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Work through a 21-day habit guide",
	}
	cmd.AddCommand(
		c.guideTopicsCmd(),
		c.guideShowCmd(),
		c.guideToggleCmd(),
		c.guideMoveCmd("next", "Move to the next day", (*guide.Tracker).Next),
		c.guideMoveCmd("prev", "Move to the previous day", (*guide.Tracker).Prev),
		c.guideProgressCmd(),
	)
	return cmd
}

func (c *cli) guideTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "topics",
		Short:       "List guide topics",
		Args:        exactArgs(0),
		Annotations: map[string]string{noApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.render(cmd, render.KindTopics, render.TopicsView{Topics: guide.Topics(), Selected: guide.DefaultTopic})
		},
	}
}

// openTopic resolves arg, requires a session and selects the topic. When
// restore is set the saved cursor, if any, replaces the default position.
func (c *cli) openTopic(ctx context.Context, arg string, restore bool) (*guide.Tracker, error) {
	topic, err := guide.Resolve(arg)
	if err != nil {
		return nil, codeError(exitInput, "%s", err)
	}
	if err := c.app.auth.Require(ctx); err != nil {
		return nil, err
	}
	tr := guide.NewTracker(c.app.client,
		guide.WithLogger(c.app.logger.Named("guide")),
		guide.WithUserID(c.app.cfg.UserID),
	)
	if _, err := tr.SelectTopic(ctx, topic); err != nil {
		return nil, err
	}
	if !restore {
		return tr, nil
	}
	pos, err := c.app.store.LoadCursor(ctx, topic)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		c.app.logger.Warn("loading cursor", zap.String("topic", topic), zap.Error(err))
	default:
		tr.Seek(pos)
	}
	return tr, nil
}

func (c *cli) saveCursor(ctx context.Context, st guide.State) {
	if st.Position < 0 {
		return
	}
	if err := c.app.store.SaveCursor(ctx, st.Topic, st.Position); err != nil {
		c.app.logger.Warn("saving cursor", zap.String("topic", st.Topic), zap.Error(err))
	}
}

// dayView renders the day at the pointer.
func dayView(st guide.State) (render.DayView, error) {
	day, ok := st.Current()
	if !ok {
		return render.DayView{}, fmt.Errorf("%q: guide has no days", st.Topic)
	}
	return render.DayView{
		Topic:     st.Topic,
		Day:       day,
		Completed: st.IsCompleted(day.Day),
		Position:  st.Position,
		Progress:  st.Summary(),
	}, nil
}

func (c *cli) guideShowCmd() *cobra.Command {
	var day int
	cmd := &cobra.Command{
		Use:   "show [topic]",
		Short: "Show the current day of a guide",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tr, err := c.openTopic(ctx, firstArg(args), day == 0)
			if err != nil {
				return err
			}
			st := tr.State()
			if day != 0 {
				if st, err = tr.SeekDay(day); err != nil {
					return err
				}
			}
			v, err := dayView(st)
			if err != nil {
				return err
			}
			c.saveCursor(ctx, st)
			return c.render(cmd, render.KindDay, v)
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "Show this day instead of the current one")
	return cmd
}

func (c *cli) guideToggleCmd() *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "toggle <day>",
		Short: "Mark a day complete, or incomplete if it already is",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := strconv.Atoi(args[0])
			if err != nil {
				return codeError(exitInput, "day must be a number, got %q", args[0])
			}
			tr, err := c.openTopic(ctx, topic, true)
			if err != nil {
				return err
			}
			st, err := tr.Toggle(ctx, day)
			if err != nil {
				return err
			}

			v := render.DayView{Topic: st.Topic, Completed: st.IsCompleted(day), Position: st.Position}
			for _, d := range st.Days {
				if d.Day == day {
					v.Day = d
				}
			}
			if werr := tr.Wait(); werr != nil {
				// Not rolled back; report and exit 0.
				v.Warning = "saving to the server failed: " + werr.Error()
			}
			v.Progress = tr.State().Summary()
			c.saveCursor(ctx, st)
			return c.render(cmd, render.KindDay, v)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Guide topic name or number (default: first topic)")
	return cmd
}

func (c *cli) guideMoveCmd(use, short string, move func(*guide.Tracker) guide.State) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tr, err := c.openTopic(ctx, topic, true)
			if err != nil {
				return err
			}
			st := move(tr)
			v, err := dayView(st)
			if err != nil {
				return err
			}
			c.saveCursor(ctx, st)
			return c.render(cmd, render.KindDay, v)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Guide topic name or number (default: first topic)")
	return cmd
}

func (c *cli) guideProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [topic]",
		Short: "Summarize completion of a guide",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := c.openTopic(cmd.Context(), firstArg(args), false)
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindProgress, tr.State().Summary())
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

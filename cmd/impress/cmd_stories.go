package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/impress/internal/attach"
	"github.com/dshills/impress/internal/render"
	"github.com/dshills/impress/internal/stories"
)

func (c *cli) storiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Browse and share stories of inspiration",
	}
	cmd.AddCommand(c.storiesListCmd(), c.storiesShowCmd(), c.storiesSubmitCmd())
	return cmd
}

func (c *cli) stories() *stories.Service {
	return stories.New(c.app.client, c.app.logger.Named("stories"))
}

func (c *cli) storiesListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approved stories",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				return codeError(exitInput, "--page must be >= 1, got %d", page)
			}
			list, err := c.stories().List(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindStories, stories.Paginate(list, page, stories.PerPage))
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func (c *cli) storiesShowCmd() *cobra.Command {
	var saveImage string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one story",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return codeError(exitInput, "story id must be a number, got %q", args[0])
			}
			st, err := c.stories().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if saveImage != "" {
				mime, data, err := stories.DecodeImage(*st)
				if err != nil {
					return err
				}
				if err := os.WriteFile(saveImage, data, 0o644); err != nil {
					return codeError(exitLocal, "writing image: %s", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s image to %s\n", mime, saveImage)
			}
			return c.render(cmd, render.KindStory, st)
		},
	}
	cmd.Flags().StringVar(&saveImage, "save-image", "", "Write the story's image to this path")
	return cmd
}

func (c *cli) storiesSubmitCmd() *cobra.Command {
	var (
		sub       stories.Submission
		storyFile string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a story for moderation",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if storyFile != "" {
				if sub.Story != "" {
					return codeError(exitInput, "use either --story or --story-file, not both")
				}
				text, err := attach.LoadText(storyFile)
				if err != nil {
					return codeError(exitInput, "%s", err)
				}
				sub.Story = text
			}
			msg, err := c.stories().Submit(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindMessage, msg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&sub.Name, "name", "", "Your name")
	f.StringVar(&sub.Email, "email", "", "Your email")
	f.StringVar(&sub.Story, "story", "", "Story text")
	f.StringVar(&storyFile, "story-file", "", "Read the story text from this file")
	f.StringVar(&sub.ImagePath, "image", "", "Optional image to attach")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/impress/internal/render"
	"github.com/dshills/impress/internal/resources"
)

func (c *cli) resourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Read resource guides and summarize talks",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:         "list",
			Short:       "List resource topics",
			Args:        exactArgs(0),
			Annotations: map[string]string{noApp: "true"},
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.render(cmd, render.KindResources, resources.List())
			},
		},
		&cobra.Command{
			Use:         "examples",
			Short:       "List suggested talks to summarize",
			Args:        exactArgs(0),
			Annotations: map[string]string{noApp: "true"},
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.render(cmd, render.KindExamples, resources.Examples())
			},
		},
		c.resourcesShowCmd(),
		c.resourcesSummarizeCmd(),
	)
	return cmd
}

func (c *cli) fetcher() *resources.Fetcher {
	return resources.NewFetcher(c.app.client,
		resources.WithCache(c.app.store),
		resources.WithLogger(c.app.logger.Named("resources")),
	)
}

func (c *cli) resourcesShowCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "show <topic>",
		Short: "Show a resource guide",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := resources.Get(args[0]); err != nil {
				return codeError(exitInput, "%s", err)
			}
			content, err := c.fetcher().Fetch(cmd.Context(), args[0], refresh)
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindResource, content)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached copy and show what changed")
	return cmd
}

func (c *cli) resourcesSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a YouTube talk",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := c.fetcher().Summarize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.render(cmd, render.KindSummary, render.SummaryView{URL: args[0], Summary: sum})
		},
	}
}

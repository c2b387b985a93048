package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matst80/slask-listings/pkg/client"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/spf13/cobra"
)

func selectionFromArgs(args []string) (types.FilterSelection, error) {
	values := url.Values{}
	for _, arg := range args {
		parsed, err := url.ParseQuery(strings.TrimPrefix(arg, "?"))
		if err != nil {
			return types.NewSelection(), err
		}
		for k, v := range parsed {
			values[k] = append(values[k], v...)
		}
	}
	return types.SelectionFromValues(values)
}

func newFacetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "facets [query...]",
		Short:   "Show the facet snapshot for a filter query",
		Example: "  facetctl facets district=A rooms=2 deal=rent",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectionFromArgs(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			snapshot, err := client.NewHTTPFetcher(serverUrl).FetchFacets(ctx, sel)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snapshot, &sel)
			return nil
		},
	}
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count [query...]",
		Short: "Count listings matching a filter query",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectionFromArgs(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			count, err := client.NewHTTPFetcher(serverUrl).Count(ctx, sel)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newCanonicalCommand() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "canonical <url>",
		Short: "Print the canonical form of a listing page url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil {
				return err
			}
			sel := client.ParseURL(u, scope)
			fmt.Fprintln(cmd.OutOrStdout(), client.EncodeURL(u, sel).String())
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "category of a category page")
	return cmd
}

// applyEdit runs one key=value edit against the controller the way a page
// would.
func applyEdit(c *client.Controller, edit string) error {
	switch edit {
	case "apply":
		return c.Apply()
	case "reset":
		return c.Reset()
	}
	key, value, ok := strings.Cut(edit, "=")
	if !ok {
		return fmt.Errorf("expected key=value, apply or reset, got %q", edit)
	}
	switch key {
	case "q":
		return c.SetSearchText(value)
	case "minPrice":
		return c.SetPrice(client.PriceMin, value)
	case "maxPrice":
		return c.SetPrice(client.PriceMax, value)
	case "deal":
		dt, ok := types.ParseDealType(value)
		if !ok {
			return fmt.Errorf("unknown deal type %q", value)
		}
		return c.SetDealType(dt)
	}
	d, ok := types.ParseDimension(key)
	if !ok {
		return fmt.Errorf("unknown dimension %q", key)
	}
	return c.SetDimensionValue(d, value)
}

func newSessionCommand() *cobra.Command {
	var start, scope string
	cmd := &cobra.Command{
		Use:     "session [edit...]",
		Short:   "Replay filter edits through a client controller",
		Example: "  facetctl session --url '/listings?returnUrl=/home' district=A maxPrice=2000000 apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(start)
			if err != nil {
				return err
			}
			nav := client.NewHistoryNavigator(u)
			c, err := client.NewController(client.Options{
				Fetcher: client.NewHTTPFetcher(serverUrl),
				Sink:    &client.URLSink{Navigator: nav},
				Scope:   scope,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			for _, edit := range args {
				if err := applyEdit(c, edit); err != nil {
					return err
				}
			}
			if err := c.Refresh(); err != nil {
				return err
			}
			view, err := waitIdle(cmd.Context(), c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range nav.History() {
				fmt.Fprintln(out, headerColor.Sprint("url ")+h.String())
			}
			if view.Snapshot == nil {
				return errors.New("no snapshot received")
			}
			printSnapshot(out, view.Snapshot, &view.Selection)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "url", "/", "page url the session starts from")
	cmd.Flags().StringVar(&scope, "scope", "", "category of a category page")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverUrl string
	timeout   time.Duration
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "facetctl",
		Short:         "Query the listing facet service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&serverUrl, "server", "s", envOr("FACET_SERVER", "http://localhost:8080"), "facet service base url")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(newFacetsCommand())
	root.AddCommand(newCountCommand())
	root.AddCommand(newCanonicalCommand())
	root.AddCommand(newSessionCommand())
	root.AddCommand(newTokenCommand())
	return root
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("Error: ")+err.Error())
		os.Exit(1)
	}
}

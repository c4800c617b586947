// The ikiguide CLI walks through the four reflective questions against a
// running backend and shows the generated career paths.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ikiguide/ikiguide/internal/client"
)

const version = "1.0.0"

type appOptions struct {
	apiURL    string
	storePath string
	sessionID string
}

func newRootCmd() *cobra.Command {
	opts := &appOptions{}

	rootCmd := &cobra.Command{
		Use:           "ikiguide",
		Short:         "Guided ikigai questionnaire",
		Long:          "ikiguide walks you through four reflective questions and generates career path suggestions from your answers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "http://localhost:8000", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&opts.storePath, "store", defaultStorePath(), "local answer store file")
	rootCmd.PersistentFlags().StringVar(&opts.sessionID, "session", "", "resume an existing session id")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newResetCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ikiguide/store.json"
	}
	return filepath.Join(home, ".ikiguide", "store.json")
}

// newFlow wires the HTTP client, the local store and the flow controller.
func newFlow(opts *appOptions) (*client.Flow, *client.HTTPClient, error) {
	api, err := client.NewHTTPClient(opts.apiURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := client.NewFileStore(opts.storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening local store: %w", err)
	}
	return client.NewFlow(api, store), api, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ikiguide", version)
		},
	}
}

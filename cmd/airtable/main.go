package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/config"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

var output string

func main() {
	root := &cobra.Command{
		Use:           "airtable",
		Short:         "Call the Airtable client directly (debugging aid for the MCP tools)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("airtable-api-key", "", "Airtable personal access token (overrides AIRTABLE_API_KEY)")
	root.PersistentFlags().String("airtable-base-url", "", "Airtable API base URL")
	root.PersistentFlags().String("airtable-timeout", "", "Airtable request timeout (e.g. 30s)")
	root.PersistentFlags().String("user-agent", "", "User-Agent header sent to Airtable")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")

	root.AddCommand(basesCmd(), tablesCmd(), recordsCmd())

	config.Init(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "airtable: %v\n", err)
		os.Exit(1)
	}
}

// withClient builds a client from configuration, runs fn and closes the
// client afterwards.
func withClient(fn func(*airtable.Client) (any, error)) error {
	log, err := logging.NewWithLevel(config.LogLevel())
	if err != nil {
		return err
	}
	timeout, err := config.AirtableTimeout()
	if err != nil {
		return err
	}
	client, err := airtable.New(config.AirtableAPIKey(),
		airtable.WithBaseURL(config.AirtableBaseURL()),
		airtable.WithTimeout(timeout),
		airtable.WithUserAgent(config.UserAgent()),
		airtable.WithLogger(log.WithName("cli")),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := fn(client)
	if err != nil {
		return err
	}
	return writeOutput(os.Stdout, output, result)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unsupported output %q (want json or yaml)", format)
	}
}

func parseFieldsFlag(raw string) (airtable.Fields, error) {
	if raw == "" {
		return nil, fmt.Errorf("--fields is required")
	}
	var fields airtable.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("--fields must be a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("--fields must be a JSON object")
	}
	return fields, nil
}

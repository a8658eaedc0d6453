package main

import (
	"github.com/spf13/cobra"

	"github.com/roivaz/airtable-mcp/internal/airtable"
)

func basesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bases",
		Short: "List accessible bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *airtable.Client) (any, error) {
				return c.ListBases(cmd.Context())
			})
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <base-id>",
		Short: "List the tables of a base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *airtable.Client) (any, error) {
				return c.ListTables(cmd.Context(), args[0])
			})
		},
	}
}

func recordsCmd() *cobra.Command {
	records := &cobra.Command{
		Use:   "records",
		Short: "List, create or update records",
	}

	var maxRecords int
	var filter string
	list := &cobra.Command{
		Use:   "list <base-id> <table>",
		Short: "List records of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts airtable.ListRecordsOptions
			if cmd.Flags().Changed("max-records") {
				opts.MaxRecords = &maxRecords
			}
			if cmd.Flags().Changed("filter") {
				opts.FilterFormula = &filter
			}
			return withClient(func(c *airtable.Client) (any, error) {
				return c.ListRecords(cmd.Context(), args[0], args[1], opts)
			})
		},
	}
	list.Flags().IntVar(&maxRecords, "max-records", 100, "Maximum number of records to return")
	list.Flags().StringVar(&filter, "filter", "", "Airtable formula to filter records")

	var createFields string
	create := &cobra.Command{
		Use:   "create <base-id> <table>",
		Short: "Create a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFieldsFlag(createFields)
			if err != nil {
				return err
			}
			return withClient(func(c *airtable.Client) (any, error) {
				return c.CreateRecord(cmd.Context(), args[0], args[1], fields)
			})
		},
	}
	create.Flags().StringVar(&createFields, "fields", "", `Field values as a JSON object, e.g. '{"Name":"Task"}'`)

	var updateFields string
	update := &cobra.Command{
		Use:   "update <base-id> <table> <record-id>",
		Short: "Update fields of a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFieldsFlag(updateFields)
			if err != nil {
				return err
			}
			return withClient(func(c *airtable.Client) (any, error) {
				return c.UpdateRecord(cmd.Context(), args[0], args[1], args[2], fields)
			})
		},
	}
	update.Flags().StringVar(&updateFields, "fields", "", `Field values to change as a JSON object`)

	records.AddCommand(list, create, update)
	return records
}

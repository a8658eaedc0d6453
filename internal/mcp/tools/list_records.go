package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

type RecordLister interface {
	ListRecords(ctx context.Context, baseID, tableIDOrName string, opts airtable.ListRecordsOptions) ([]airtable.Record, error)
}

type ListRecordsHandler struct {
	Service RecordLister
	Log     logging.Logger
}

func (h *ListRecordsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	baseID, err := requiredString(args, "base_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := requiredString(args, "table_id_or_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxRecords, err := parseMaxRecords(args["max_records"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := airtable.ListRecordsOptions{
		MaxRecords:    &maxRecords,
		FilterFormula: optionalString(args, "filter_formula"),
	}
	records, err := h.Service.ListRecords(ctx, baseID, table, opts)
	if err != nil {
		return failure(h.Log, "list_records", err), nil
	}
	return jsonResult(records), nil
}

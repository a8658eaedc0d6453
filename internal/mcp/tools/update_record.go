package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

type RecordUpdater interface {
	UpdateRecord(ctx context.Context, baseID, tableIDOrName, recordID string, fields airtable.Fields) (airtable.Record, error)
}

type UpdateRecordHandler struct {
	Service RecordUpdater
	Log     logging.Logger
}

func (h *UpdateRecordHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	baseID, err := requiredString(args, "base_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := requiredString(args, "table_id_or_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recordID, err := requiredString(args, "record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Partial update: only the supplied fields change.
	fields, err := parseFields(args["fields"], true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := h.Service.UpdateRecord(ctx, baseID, table, recordID, fields)
	if err != nil {
		return failure(h.Log, "update_record", err), nil
	}
	h.Log.Debug("record updated", "base", baseID, "table", table, "record", record.ID)
	return jsonResult(record), nil
}

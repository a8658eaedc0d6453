package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

type RecordCreator interface {
	CreateRecord(ctx context.Context, baseID, tableIDOrName string, fields airtable.Fields) (airtable.Record, error)
}

type CreateRecordHandler struct {
	Service RecordCreator
	Log     logging.Logger
}

func (h *CreateRecordHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	baseID, err := requiredString(args, "base_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := requiredString(args, "table_id_or_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := parseFields(args["fields"], false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := h.Service.CreateRecord(ctx, baseID, table, fields)
	if err != nil {
		return failure(h.Log, "create_record", err), nil
	}
	h.Log.Debug("record created", "base", baseID, "table", table, "record", record.ID)
	return jsonResult(record), nil
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

type TableLister interface {
	ListTables(ctx context.Context, baseID string) ([]airtable.Table, error)
}

type ListTablesHandler struct {
	Service TableLister
	Log     logging.Logger
}

func (h *ListTablesHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseID, err := requiredString(req.GetArguments(), "base_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tables, err := h.Service.ListTables(ctx, baseID)
	if err != nil {
		return failure(h.Log, "list_tables", err), nil
	}
	return jsonResult(tables), nil
}

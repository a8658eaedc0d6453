package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

type BaseLister interface {
	ListBases(ctx context.Context) ([]airtable.Base, error)
}

type ListBasesHandler struct {
	Service BaseLister
	Log     logging.Logger
}

func (h *ListBasesHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bases, err := h.Service.ListBases(ctx)
	if err != nil {
		return failure(h.Log, "list_bases", err), nil
	}
	return jsonResult(bases), nil
}

package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
	"github.com/roivaz/airtable-mcp/internal/mcp/tools"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Client       *airtable.Client
	Log          logging.Logger
}

// DefaultConfig wires every Airtable tool to client. The returned config owns
// client: Server.Close shuts it down.
func DefaultConfig(client *airtable.Client, log logging.Logger, endpointPath string) Config {
	toolLog := log.WithName("tools")
	if endpointPath == "" {
		endpointPath = "/mcp/jsonrpc"
	}
	return Config{
		ToolAdapters: map[string]ToolAdapter{
			ToolListBases:    &tools.ListBasesHandler{Service: client, Log: toolLog},
			ToolListTables:   &tools.ListTablesHandler{Service: client, Log: toolLog},
			ToolListRecords:  &tools.ListRecordsHandler{Service: client, Log: toolLog},
			ToolCreateRecord: &tools.CreateRecordHandler{Service: client, Log: toolLog},
			ToolUpdateRecord: &tools.UpdateRecordHandler{Service: client, Log: toolLog},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(endpointPath),
			server.WithStateLess(true),
		},
		Client: client,
		Log:    log,
	}
}

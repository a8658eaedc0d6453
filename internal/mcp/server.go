package mcp

import (
	"context"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/logging"
)

const (
	ServerName    = "airtable"
	ServerVersion = "1.0.0"

	ToolListBases    = "list_bases"
	ToolListTables   = "list_tables"
	ToolListRecords  = "list_records"
	ToolCreateRecord = "create_record"
	ToolUpdateRecord = "update_record"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	Handler http.Handler
	Client  *airtable.Client
	log     logging.Logger
}

var toolDefinitions = map[string]mcp.Tool{
	ToolListBases: mcp.NewTool(ToolListBases,
		mcp.WithDescription("List all Airtable bases accessible to your account. Returns each base's ID, name, and your permission level. Use the base ID in subsequent calls to list_tables and record operations."),
	),
	ToolListTables: mcp.NewTool(ToolListTables,
		mcp.WithDescription("List all tables in an Airtable base. Returns each table's ID, name, and field definitions. Use the table ID or name in record operations."),
		mcp.WithString("base_id",
			mcp.Required(),
			mcp.Description("The base ID (starts with 'app', e.g., 'appABC123')"),
		),
	),
	ToolListRecords: mcp.NewTool(ToolListRecords,
		mcp.WithDescription("List records from an Airtable table. Returns each record's ID, creation time, and field values."),
		mcp.WithString("base_id",
			mcp.Required(),
			mcp.Description("The base ID (starts with 'app')"),
		),
		mcp.WithString("table_id_or_name",
			mcp.Required(),
			mcp.Description("Table ID (starts with 'tbl') or table name"),
		),
		mcp.WithNumber("max_records",
			mcp.Description("Maximum number of records to return (default: 100)"),
		),
		mcp.WithString("filter_formula",
			mcp.Description("Airtable formula to filter records, e.g., \"{Status}='Done'\""),
		),
	),
	ToolCreateRecord: mcp.NewTool(ToolCreateRecord,
		mcp.WithDescription("Create a new record in an Airtable table. Returns the created record with its new ID and all field values. Example fields: {\"Name\": \"New Task\", \"Status\": \"Pending\"}"),
		mcp.WithString("base_id",
			mcp.Required(),
			mcp.Description("The base ID (starts with 'app')"),
		),
		mcp.WithString("table_id_or_name",
			mcp.Required(),
			mcp.Description("Table ID or table name"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Object mapping field names to values"),
		),
	),
	ToolUpdateRecord: mcp.NewTool(ToolUpdateRecord,
		mcp.WithDescription("Update an existing record in an Airtable table. Only the specified fields are changed. Returns the updated record with all field values."),
		mcp.WithString("base_id",
			mcp.Required(),
			mcp.Description("The base ID (starts with 'app')"),
		),
		mcp.WithString("table_id_or_name",
			mcp.Required(),
			mcp.Description("Table ID or table name"),
		),
		mcp.WithString("record_id",
			mcp.Required(),
			mcp.Description("The record ID to update (starts with 'rec')"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Object mapping field names to new values"),
		),
	),
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for name, adapter := range cfg.ToolAdapters {
		tool, ok := toolDefinitions[name]
		if !ok {
			tool = mcp.NewTool(name)
		}
		mcpServer.AddTool(tool, adapter.ToolAdapter)
	}

	return &Server{
		MCP:     mcpServer,
		Handler: server.NewStreamableHTTPServer(mcpServer, cfg.Options...),
		Client:  cfg.Client,
		log:     cfg.Log.WithName("server"),
	}
}

// ServeStdio runs the server over in and out until ctx is cancelled or in is
// closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(stdLogger(s.log))
	return stdio.Listen(ctx, in, out)
}

// Close shuts down the Airtable client. Safe to call more than once.
func (s *Server) Close() {
	if s.Client == nil {
		return
	}
	if err := s.Client.Close(); err != nil {
		s.log.Error(err, "error closing airtable client")
	}
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the command host to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/service"
)

// PlaceholdersURI identifies the placeholder reference resource.
const PlaceholdersURI = "notecmd://placeholders"

// Server wraps the MCP server with the command host tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *service.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notecmd",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List every registered action with its id and display name."),
	), s.listActions)

	s.mcp.AddTool(mcp.NewTool("run_action",
		mcp.WithDescription("Run one action by display name (e.g. \"Create today\") or by id. "+
			"Returns the notices it produced."),
		mcp.WithString("action", mcp.Required(), mcp.Description("Display name or action id")),
		mcp.WithString("date", mcp.Description("Date for create-with-date commands: today, yesterday, tomorrow or YYYY-MM-DD")),
	), s.runAction)

	s.mcp.AddTool(mcp.NewTool("run_sequence",
		mcp.WithDescription("Run a comma-separated list of action display names in order. "+
			"Unknown or failing names do not stop the rest."),
		mcp.WithString("names", mcp.Required(), mcp.Description("Comma-separated display names")),
		mcp.WithString("date", mcp.Description("Date for create-with-date commands")),
	), s.runSequence)

	s.mcp.AddTool(mcp.NewTool("resolve_template",
		mcp.WithDescription("Expand {{date}}, {{time}} and related placeholders. "+
			"See the "+PlaceholdersURI+" resource for the syntax."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Text containing placeholders")),
		mcp.WithString("date", mcp.Description("Reference date (defaults to today)")),
	), s.resolveTemplate)

	s.mcp.AddTool(mcp.NewTool("list_commands",
		mcp.WithDescription("List the custom command definitions."),
	), s.listCommands)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the paths of all notes in the vault."),
	), s.listNotes)

	s.mcp.AddResource(
		mcp.NewResource(PlaceholdersURI, "Placeholder Reference",
			mcp.WithResourceDescription("Date and time placeholders understood in paths, templates and snippets."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPlaceholdersResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listActions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListActions(ctx))
}

func (s *Server) runAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date := req.GetString("date", "")

	res, err := s.svc.RunActionByName(ctx, action, date)
	if errors.Is(err, apperr.ErrNotFound) {
		// Fall back to the id.
		if byID, idErr := s.svc.RunAction(ctx, action, date); idErr == nil {
			res, err = byID, nil
		}
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return runResult(res)
}

func (s *Server) runSequence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := req.RequireString("names")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.RunSequence(ctx, names, req.GetString("date", ""))
	if err != nil {
		if res != nil && len(res.Notices) > 0 {
			return mcp.NewToolResultError(strings.Join(res.Notices, "\n")), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return runResult(res)
}

func runResult(res *service.RunResult) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Error != "" {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) resolveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tmpl, err := req.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Resolve(ctx, tmpl, req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) listCommands(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListCommands(ctx))
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.Notes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(notes, "\n")), nil
}

func (s *Server) readPlaceholdersResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PlaceholdersURI,
			MIMEType: "text/markdown",
			Text:     PlaceholderReference,
		},
	}, nil
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the habit tracker to LLMs via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/habitdash/internal/apperr"
	"github.com/starford/habitdash/internal/habitservice"
	"github.com/starford/habitdash/internal/journal"
	"github.com/starford/habitdash/internal/slot"
)

const tagSyntaxURI = "habits://tag-syntax"

// Server wraps the MCP server with habit tools.
type Server struct {
	mcp         *server.MCPServer
	svc         *habitservice.Service
	board       *slot.Board
	defaultSlot string
}

// New creates a new MCP server with all habit tools registered.
func New(svc *habitservice.Service, board *slot.Board, defaultSlot string) *Server {
	s := &Server{svc: svc, board: board, defaultSlot: defaultSlot}

	s.mcp = server.NewMCPServer(
		"habitdash",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("habit_stats",
		mcp.WithDescription("Per-habit statistics from the journal, most frequent habit first. "+
			"Each habit lists its total count and its entries sorted by date and time."),
		mcp.WithString("start", mcp.Description("Optional first journal day (YYYY-MM-DD)")),
		mcp.WithString("end", mcp.Description("Optional last journal day (YYYY-MM-DD)")),
	), s.habitStats)

	s.mcp.AddTool(mcp.NewTool("habit_entries",
		mcp.WithDescription("All recorded entries of one habit. Names are matched exactly (case-sensitive)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Habit name as written after #habit")),
		mcp.WithString("start", mcp.Description("Optional first journal day (YYYY-MM-DD)")),
		mcp.WithString("end", mcp.Description("Optional last journal day (YYYY-MM-DD)")),
	), s.habitEntries)

	s.mcp.AddTool(mcp.NewTool("render_dashboard",
		mcp.WithDescription("Re-render the habit dashboard into a UI slot. Open dashboards refresh."),
		mcp.WithString("slot", mcp.Description("Slot id (defaults to the configured dashboard slot)")),
	), s.renderDashboard)

	s.mcp.AddTool(mcp.NewTool("get_tag_syntax",
		mcp.WithDescription("Returns the #habit tag syntax. "+
			"Call this before writing journal blocks meant to be tracked."),
	), s.getTagSyntax)

	s.mcp.AddResource(
		mcp.NewResource(tagSyntaxURI, "Habit Tag Syntax",
			mcp.WithResourceDescription("How journal blocks record habits with the #habit tag."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagSyntaxResource,
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

func requestRange(req mcp.CallToolRequest) (journal.Range, error) {
	return journal.ParseRange(req.GetString("start", ""), req.GetString("end", ""))
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) habitStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := requestRange(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stats, err := s.svc.Stats(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(stats) == 0 {
		return mcp.NewToolResultText("no habits found"), nil
	}
	return jsonResult(stats), nil
}

func (s *Server) habitEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := requestRange(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h, err := s.svc.Habit(ctx, name, r)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("habit not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(h.Entries), nil
}

func (s *Server) renderDashboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("slot", s.defaultSlot)
	if id == "" {
		return mcp.NewToolResultError("slot is required"), nil
	}
	s.svc.Render(ctx, id)
	c, ok := s.board.Latest(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("render of slot %s failed, see server log", id)), nil
	}
	return jsonResult(map[string]any{
		"slot":     c.Slot,
		"key":      c.Key,
		"checksum": c.Checksum,
		"bytes":    len(c.Template),
	}), nil
}

func (s *Server) getTagSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TagSyntaxContract), nil
}

func (s *Server) readTagSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tagSyntaxURI,
			MIMEType: "text/markdown",
			Text:     TagSyntaxContract,
		},
	}, nil
}

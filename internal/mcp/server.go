// Package mcp exposes the journal to agent hosts over the Model Context
// Protocol. The server speaks stdio; an MCP-capable assistant can log
// moments, read the context window and compose entries on the user's behalf.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/window"
)

// Server wires the journal store, context window builder and generator into
// MCP tools.
type Server struct {
	store   *journal.Store
	windows *window.Builder
	gen     *generate.Generator
	log     zerolog.Logger
	mcp     *server.MCPServer
}

// NewServer creates the MCP server with all journal tools registered.
func NewServer(store *journal.Store, windows *window.Builder, gen *generate.Generator, log zerolog.Logger, version string) *Server {
	s := &Server{
		store:   store,
		windows: windows,
		gen:     gen,
		log:     log,
	}

	m := server.NewMCPServer(
		"bodypress",
		version,
		server.WithToolCapabilities(true),
	)

	logCapture := mcp.NewTool("log_capture",
		mcp.WithDescription("Record a moment in the journal: a note with optional mood and tags, stored as a capture and folded into that day's entry."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Free-form text describing the moment")),
		mcp.WithString("mood", mcp.Description("How the moment felt, free-form")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	)
	m.AddTool(logCapture, s.handleLogCapture)

	getWindow := mcp.NewTool("get_context_window",
		mcp.WithDescription("Render the multi-day context window: recent journal entries in the exact text format used to ground entry generation."),
		mcp.WithNumber("days", mcp.Description("How many days to include (default 7)")),
	)
	m.AddTool(getWindow, s.handleGetContextWindow)

	composeEntry := mcp.NewTool("compose_entry",
		mcp.WithDescription("Generate (or regenerate) the journal entry for a date from its stored captures. Returns the entry, or the reason nothing was written."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Calendar date, YYYY-MM-DD")),
		mcp.WithString("user_note", mcp.Description("Annotation to carry into the entry")),
		mcp.WithString("user_mood", mcp.Description("User-stated mood to carry into the entry")),
	)
	m.AddTool(composeEntry, s.handleComposeEntry)

	getEntry := mcp.NewTool("get_entry",
		mcp.WithDescription("Fetch the stored journal entry for a date as JSON."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Calendar date, YYYY-MM-DD")),
	)
	m.AddTool(getEntry, s.handleGetEntry)

	s.mcp = m
	return s
}

// Run serves MCP over stdio until the host disconnects.
func (s *Server) Run() error {
	s.log.Info().Msg("mcp server listening on stdio")
	return server.ServeStdio(s.mcp)
}

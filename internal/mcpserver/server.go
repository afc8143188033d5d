// Package mcpserver exposes scripture search and lookups as Model Context
// Protocol tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	srkerrors "github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/search"
	"github.com/srikosa/srikosa/internal/validation"
)

// Name is the server name reported during initialization.
const Name = "Śrīkoṣa"

// Server holds the MCP server and the engine its tools call.
type Server struct {
	engine *search.Engine
	store  catalog.Store
	mcp    *server.MCPServer
}

// SearchOutput is the search_scriptures payload.
type SearchOutput struct {
	Query   string          `json:"query"`
	Total   int             `json:"total"`
	Results []search.Result `json:"results"`
}

// CategoryOutput is one list_categories entry.
type CategoryOutput struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Scriptures  int    `json:"scriptures"`
}

// VerseOutput is the get_verse payload.
type VerseOutput struct {
	Scripture    string   `json:"scripture"`
	Name         string   `json:"name"`
	Section      string   `json:"section"`
	Number       int      `json:"verse_number"`
	Original     string   `json:"original_text"`
	IAST         string   `json:"iast_text"`
	Translation  string   `json:"english_translation,omitempty"`
	Commentaries []string `json:"commentaries"`
}

// New registers the tools on a fresh MCP server.
func New(engine *search.Engine, version string) *Server {
	s := &Server{
		engine: engine,
		store:  engine.Store(),
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(true),
		),
	}

	s.mcp.AddTool(
		mcp.NewTool("search_scriptures",
			mcp.WithDescription("Search categories, scriptures and verses (original text, transliteration, translation and commentaries). Returns up to 50 ranked results with the total match count."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Case-insensitive substring to find, at least 2 characters (e.g. 'dharma', 'Tiruppavai')"),
			),
		),
		s.handleSearch,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_categories",
			mcp.WithDescription("List the scripture categories with their descriptions and how many scriptures each holds."),
		),
		s.handleListCategories,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_verse",
			mcp.WithDescription("Read one verse of a scripture with its transliteration, translation and commentaries."),
			mcp.WithString("scripture",
				mcp.Required(),
				mcp.Description("Scripture slug (e.g. 'bhagavad-gita')"),
			),
			mcp.WithNumber("verse",
				mcp.Required(),
				mcp.Description("Verse number, starting at 1"),
			),
		),
		s.handleGetVerse,
	)

	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over the given streams until ctx is done or in closes.
// Protocol errors go to the structured logger, never to out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError))
	logging.Info("mcp_server_started", "transport", "stdio")
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	resp, err := s.engine.Run(ctx, query)
	if err != nil {
		return toolError(ctx, "search_scriptures", err), nil
	}
	return jsonResult(SearchOutput{Query: resp.Query, Total: resp.Total, Results: resp.Results})
}

func (s *Server) handleListCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(ctx, "list_categories", err), nil
	}
	out := make([]CategoryOutput, len(snap.Categories))
	for i, c := range snap.Categories {
		out[i] = CategoryOutput{
			Slug:        c.Slug,
			Name:        c.Name,
			Description: c.Description,
			Scriptures:  len(snap.ScripturesByCategory(c.Name)),
		}
	}
	return jsonResult(out)
}

func (s *Server) handleGetVerse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := req.GetString("scripture", "")
	if err := validation.ValidateSlug(slug); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scripture slug %q", slug)), nil
	}
	n := req.GetInt("verse", 0)
	if n <= 0 {
		return mcp.NewToolResultError("verse must be a positive integer"), nil
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(ctx, "get_verse", err), nil
	}
	ref, err := snap.FindVerse(slug, n)
	if err != nil {
		return toolError(ctx, "get_verse", err), nil
	}

	out := VerseOutput{
		Scripture:    ref.Scripture.Metadata.Slug,
		Name:         ref.Scripture.Metadata.Name,
		Section:      ref.SectionLabel(),
		Number:       ref.Verse.Number,
		Original:     ref.Verse.OriginalText,
		IAST:         ref.Verse.IASTText,
		Translation:  ref.Verse.EnglishTranslation,
		Commentaries: make([]string, 0, len(ref.Verse.Commentaries)),
	}
	for _, c := range ref.Verse.Commentaries {
		out.Commentaries = append(out.Commentaries, c.Text)
	}
	return jsonResult(out)
}

// toolError reports err to the client as a tool failure. Lookup misses are
// shown as-is; data failures are logged and reported generically.
func toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	var nf *srkerrors.NotFoundError
	if errors.As(err, &nf) {
		return mcp.NewToolResultError(nf.Error())
	}
	logging.ErrorContext(ctx, "mcp_tool_failed", "tool", tool, "error", err.Error())
	return mcp.NewToolResultError("the scripture library is temporarily unavailable")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Craftfolder tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/craftfolder/internal/collection"
	"github.com/starford/craftfolder/internal/cost"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/settings"
	"github.com/starford/craftfolder/internal/storage"
	"github.com/starford/craftfolder/internal/transfer"
)

const dataFormatURI = "craftfolder://data-format"

// Deps are the services the tools operate on.
type Deps struct {
	Projects   *projects.Store
	Collection *collection.Store
	Settings   *settings.Store
	Transfer   *transfer.Service
	Media      storage.Provider
	Locale     string
}

// Server wraps the MCP server with Craftfolder tools.
type Server struct {
	mcp *server.MCPServer
	d   Deps
}

// New creates a new MCP server with all tools registered.
func New(d Deps) *Server {
	s := &Server{d: d}

	s.mcp = server.NewMCPServer(
		"Craftfolder",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all craft projects with their session and photo counts."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project_timeline",
		mcp.WithDescription("Return a project's timeline, newest first, with sessions, photos and patterns resolved."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	), s.getProjectTimeline)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new crochet or cross-stitch project. "+
			"Read the data format via get_data_format or the "+dataFormatURI+" resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
		mcp.WithString("craft_type", mcp.Description("Crochet (default) or Cross Stitch"),
			mcp.Enum(string(models.CraftCrochet), string(models.CraftCrossStitch))),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
		mcp.WithString("counters", mcp.Description("Comma-separated default counter names, e.g. Rows,Stitches")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("add_pattern",
		mcp.WithDescription("Add a pattern to a project's wishlist and timeline."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Pattern title")),
		mcp.WithString("link", mcp.Description("Where the pattern can be found")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	), s.addPattern)

	s.mcp.AddTool(mcp.NewTool("add_photo",
		mcp.WithDescription("Store an image and add it to a project's photos and timeline. "+
			"Only base64 data URIs are accepted (data:image/png;base64,...)."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("data_uri", mcp.Required(), mcp.Description("Image as a base64 data URI")),
		mcp.WithString("title", mcp.Description("Photo title")),
		mcp.WithString("notes", mcp.Description("Photo notes")),
	), s.addPhoto)

	s.mcp.AddTool(mcp.NewTool("list_collection",
		mcp.WithDescription("List yarn and thread in the inventory."),
		mcp.WithString("type", mcp.Description("All (default), Yarn or Thread"),
			mcp.Enum(collection.FilterAll, collection.FilterYarn, collection.FilterThread)),
	), s.listCollection)

	s.mcp.AddTool(mcp.NewTool("add_collection_item",
		mcp.WithDescription("Add a yarn or thread to the inventory."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
		mcp.WithString("type", mcp.Description("Yarn (default) or Thread"),
			mcp.Enum(string(models.ItemYarn), string(models.ItemThread))),
		mcp.WithString("brand", mcp.Description("Brand")),
		mcp.WithString("colour", mcp.Description("Colour")),
		mcp.WithString("material", mcp.Description("Material")),
		mcp.WithString("weight", mcp.Description("Weight, e.g. DK")),
		mcp.WithNumber("stock", mcp.Description("Skeins in stock (default 1)")),
	), s.addCollectionItem)

	s.mcp.AddTool(mcp.NewTool("calculate_cost",
		mcp.WithDescription("Price a finished piece from yarn, labour and extra costs."),
		mcp.WithNumber("skein_price", mcp.Required(), mcp.Description("Price of one skein")),
		mcp.WithNumber("skein_size", mcp.Required(), mcp.Description("Skein size in grams or metres, > 0")),
		mcp.WithNumber("yarn_used", mcp.Required(), mcp.Description("Yarn used, same unit as skein_size")),
		mcp.WithNumber("hours_worked", mcp.Description("Hours worked")),
		mcp.WithNumber("hourly_rate", mcp.Description("Hourly rate")),
		mcp.WithNumber("extra_costs", mcp.Description("Other costs")),
		mcp.WithNumber("profit_margin", mcp.Description("Profit margin in percent")),
		mcp.WithString("currency", mcp.Description("ISO currency code; defaults to the user's currency")),
	), s.calculateCost)

	s.mcp.AddTool(mcp.NewTool("export_projects",
		mcp.WithDescription("Write all projects to a JSON export file and return its path."),
	), s.exportProjects)

	s.mcp.AddTool(mcp.NewTool("get_data_format",
		mcp.WithDescription("Returns the Craftfolder data format. "+
			"Call this before creating projects or importing data."),
	), s.getDataFormat)

	s.mcp.AddResource(
		mcp.NewResource(dataFormatURI, "Craftfolder Data Format",
			mcp.WithResourceDescription("Shape of projects, sessions, photos, patterns and the timeline."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDataFormatResource,
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

type projectSummary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CraftType models.CraftType `json:"craftType"`
	Sessions  int              `json:"sessions"`
	Photos    int              `json:"photos"`
	Seconds   int              `json:"seconds"`
	CreatedAt models.Timestamp `json:"createdAt"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listProjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.d.Projects.List()
	out := make([]projectSummary, 0, len(list))
	for _, p := range list {
		sum := projectSummary{
			ID:        p.ID,
			Title:     p.Title,
			CraftType: p.CraftType,
			Sessions:  len(p.Sessions),
			Photos:    len(p.Photos),
			CreatedAt: p.CreatedAt,
		}
		for _, sess := range p.Sessions {
			sum.Seconds += sess.Seconds
		}
		out = append(out, sum)
	}
	return jsonResult(out)
}

func (s *Server) getProjectTimeline(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.d.Projects.Timeline(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := projects.ProjectInput{
		Title:     title,
		CraftType: models.CraftType(req.GetString("craft_type", string(models.CraftCrochet))),
		Notes:     req.GetString("notes", ""),
	}
	if names := splitList(req.GetString("counters", "")); len(names) > 0 {
		in.Defaults = &models.ProjectDefaults{Counters: names}
	}

	p, err := s.d.Projects.Save(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) addPattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pt, err := s.d.Projects.AddPattern(ctx, id, projects.PatternInput{
		Title: title,
		Link:  req.GetString("link", ""),
		Notes: req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pt)
}

func (s *Server) listCollection(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.d.Collection.List(req.GetString("type", collection.FilterAll))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) addCollectionItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	it, err := s.d.Collection.Add(ctx, collection.ItemInput{
		Name:     name,
		Type:     models.ItemType(req.GetString("type", string(models.ItemYarn))),
		Brand:    req.GetString("brand", ""),
		Colour:   req.GetString("colour", ""),
		Material: req.GetString("material", ""),
		Weight:   req.GetString("weight", ""),
		Stock:    req.GetInt("stock", 1),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) calculateCost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := cost.Input{
		SkeinPrice:   req.GetFloat("skein_price", 0),
		SkeinSize:    req.GetFloat("skein_size", 0),
		YarnUsed:     req.GetFloat("yarn_used", 0),
		HoursWorked:  req.GetFloat("hours_worked", 0),
		HourlyRate:   req.GetFloat("hourly_rate", 0),
		ExtraCosts:   req.GetFloat("extra_costs", 0),
		ProfitMargin: req.GetFloat("profit_margin", 0),
		Currency:     req.GetString("currency", ""),
	}
	if in.Currency == "" && s.d.Settings != nil {
		in.Currency = s.d.Settings.Currency(s.d.Locale)
	}

	res, err := cost.Calculate(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) exportProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.d.Transfer.Export(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) getDataFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DataFormatContract), nil
}

func (s *Server) readDataFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dataFormatURI,
			MIMEType: "text/markdown",
			Text:     DataFormatContract,
		},
	}, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func errorf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

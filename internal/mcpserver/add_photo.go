package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/craftfolder/internal/media"
	"github.com/starford/craftfolder/internal/projects"
)

type addPhotoResult struct {
	PhotoID string `json:"photoId"`
	URL     string `json:"url"`
	Size    int64  `json:"size"`
}

// addPhoto stores a data URI image in the media directory and records it as
// a project photo. Remote URLs are refused; nothing is fetched.
func (s *Server) addPhoto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uri, err := req.RequireString("data_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Fail before writing anything for an unknown project.
	if _, err := s.d.Projects.Get(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := media.DecodeDataURI(uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stored, err := media.Save(s.d.Media, data)
	if err != nil {
		if errors.Is(err, media.ErrUnsupported) {
			return errorf("unsupported image: %v", err), nil
		}
		return errorf("failed to store image: %v", err), nil
	}

	ph, err := s.d.Projects.AddPhoto(ctx, id, projects.PhotoInput{
		URI:   stored.URL,
		Title: req.GetString("title", ""),
		Notes: req.GetString("notes", ""),
	})
	if err != nil && !errors.Is(err, projects.ErrPersist) {
		_ = s.d.Media.Delete(stored.Filename)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(addPhotoResult{PhotoID: ph.ID, URL: stored.URL, Size: stored.Size})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/image-bandpass/internal/bandpass"
	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_bandpass").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/bandpass function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Smoothing
	case "image_box_blur":
		return s.handleImageBoxBlur(args)

	// Band Decomposition
	case "image_bandpass":
		return s.handleImageBandpass(args)
	case "image_band_stats":
		return s.handleImageBandStats(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Smoothing Handlers ===

type imageBoxBlurArgs struct {
	Path       string `json:"path"`
	Radius     *int   `json:"radius"`
	Passes     *int   `json:"passes"`
	OutputPath string `json:"output_path"`
}

// BoxBlurResult describes a blurred image written by image_box_blur.
type BoxBlurResult struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Radius     int    `json:"radius"`
	Passes     int    `json:"passes"`
	OutputPath string `json:"output_path"`
}

func (s *Server) handleImageBoxBlur(args json.RawMessage) (interface{}, error) {
	var a imageBoxBlurArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Radius == nil {
		return nil, errors.New("radius is required")
	}
	if a.OutputPath == "" {
		return nil, errors.New("output_path is required")
	}
	passes := 1
	if a.Passes != nil {
		passes = *a.Passes
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	src, err := imaging.NewBufferFromImage(img)
	if err != nil {
		return nil, err
	}
	blurred, err := bandpass.SmoothPasses(src, *a.Radius, passes)
	if err != nil {
		return nil, err
	}
	out, err := blurred.ToImage()
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(out, a.OutputPath); err != nil {
		return nil, err
	}

	return &BoxBlurResult{
		Width:      out.Width,
		Height:     out.Height,
		Radius:     *a.Radius,
		Passes:     passes,
		OutputPath: a.OutputPath,
	}, nil
}

// === Band Decomposition Handlers ===

type imageBandpassArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`
}

// BandFile is one band image written by image_bandpass.
type BandFile struct {
	Path    string               `json:"path"`
	Summary bandpass.BandSummary `json:"summary"`
}

// BandpassResult lists the band images written by image_bandpass.
type BandpassResult struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Bands  []BandFile `json:"bands"`
}

func (s *Server) handleImageBandpass(args json.RawMessage) (interface{}, error) {
	var a imageBandpassArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		a.OutputDir = filepath.Dir(a.Path)
	}
	if a.Format == "" {
		a.Format = "png"
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := bandpass.Decompose(img, s.opts)
	if err != nil {
		return nil, err
	}
	paths, err := res.WriteBands(a.OutputDir, bandpass.Stem(a.Path), a.Format)
	if err != nil {
		return nil, err
	}

	out := &BandpassResult{Width: img.Width, Height: img.Height}
	for i, summary := range res.Summaries() {
		out.Bands = append(out.Bands, BandFile{Path: paths[i], Summary: summary})
	}
	return out, nil
}

// BandStatsResult holds the summaries returned by image_band_stats.
type BandStatsResult struct {
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	Bands  []bandpass.BandSummary `json:"bands"`
}

func (s *Server) handleImageBandStats(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := bandpass.Decompose(img, s.opts)
	if err != nil {
		return nil, err
	}
	return &BandStatsResult{
		Width:  img.Width,
		Height: img.Height,
		Bands:  res.Summaries(),
	}, nil
}

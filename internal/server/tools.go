package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Smoothing
		{
			Name:        "image_box_blur",
			Description: "Apply a border-clipped box blur one or more times and save the result. Each output pixel is the mean of the square window of half-width radius around it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Half-width of the blur window in pixels (0 copies the image)",
						"minimum":     0,
					},
					"passes": map[string]interface{}{
						"type":        "integer",
						"description": "Number of times the blur is applied (default 1)",
						"default":     1,
						"minimum":     0,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the blurred image; the extension selects the format",
					},
				},
				"required": []string{"path", "radius", "output_path"},
			},
		},

		// Band Decomposition
		{
			Name:        "image_bandpass",
			Description: "Split an image into tiny, small and medium detail bands (differences of box-smoothed scales at radii 2, 3, 5 and 8) and write one image per band.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the band images (default: the input's directory)",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "ppm", "bmp", "tiff", "jpg", "gif"},
						"description": "Output format (default png)",
						"default":     "png",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_band_stats",
			Description: "Decompose an image into tiny, small and medium detail bands and return per-band statistics without writing any files.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

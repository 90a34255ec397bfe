package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

func cleanProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Remove detected text before embedding, as renders do. Default true",
		"default":     true,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Rendering
		{
			Name: "meme_render",
			Description: "Render captions onto an image. The image is matched against the template index; " +
				"when a blank template is found its text regions are reused, otherwise the image's own text is " +
				"removed and the captions are drawn where it was. Writes a PNG and returns the layout used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the source image"),
					"captions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Captions in reading order, top to bottom",
					},
					"output": pathProperty("Optional output path. Defaults to a new file in the configured output directory"),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the rendered image as base64 PNG, scaled to at most 1024px. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "captions"},
			},
		},

		// Text
		{
			Name:        "meme_detect_text",
			Description: "Find text blocks in an image. Returns merged regions top to bottom with their text, confidence and bounding polygon.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "meme_remove_text",
			Description: "Detect and erase the text of an image by inpainting, producing a blank template. Writes a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty("Absolute path to the image file"),
					"output": pathProperty("Optional output path. Defaults to a new file in the configured output directory"),
				},
				"required": []string{"path"},
			},
		},

		// Template index
		{
			Name:        "index_search",
			Description: "Find the templates most similar to an image by cosine similarity of embeddings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the query image"),
					"k": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of matches. Default 5",
						"default":     5,
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum similarity in [-1, 1]. Default 0",
						"default":     0.0,
					},
					"clean": cleanProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "index_add",
			Description: "Add an image to the template index under its path. Adding a path twice is a no-op.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty("Absolute path to the template image"),
					"clean": cleanProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "index_stats",
			Description: "Report the template index size, dimension, backend and indexed paths.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Fonts
		{
			Name:        "font_fit",
			Description: "Choose a font size for a caption in a box of the given size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Caption text",
					},
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Target width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Target height in pixels",
					},
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest allowed size. Default 10",
						"default":     10,
					},
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Largest allowed size. Default 100",
						"default":     100,
					},
				},
				"required": []string{"text", "width", "height"},
			},
		},

		// Diagnostics
		{
			Name:        "system_info",
			Description: "Report the OCR engine, embedding extractor, index, cache and font in use.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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

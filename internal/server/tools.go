package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a captured frame (PNG, JPEG or BMP)",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned image (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Detection
		{
			Name:        "ball_detect",
			Description: "Run the ball detector on an image file. Returns at most one ball per color class, in color table order, with the enclosing circle (x, y, radius), the moment centroid, the contour area and whether the ball is large enough to be marked.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ball_annotate",
			Description: "Run the ball detector and return the detections together with the frame annotated the way the live node does it: enclosing circle in yellow, centroid in red, color name above the ball.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"scale": scaleProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Calibration
		{
			Name:        "ball_sample_hsv",
			Description: "Sample one pixel and return its RGB value and its HSV value in the detector's 8-bit convention (H 0-179, S and V 0-255), plus the color classes it falls into. Use this to tune class bounds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0 = left edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0 = top edge)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "ball_mask",
			Description: "Return the noise-suppressed binary mask for one color class as a PNG (white = in class) and the number of set pixels. Use this to see what the detector sees for a color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color class name, e.g. \"green\"",
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path", "color"},
			},
		},
		{
			Name:        "ball_grid",
			Description: "Overlay a labelled coordinate grid on an image so pixel coordinates for ball_sample_hsv can be read off it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines. Default 50",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each intersection with its coordinates. Default true",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Line color as #RRGGBB or #RRGGBBAA. Default #FF000080",
						"default":     "#FF000080",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ball_cache_clear",
			Description: "Drop cached images so re-captured frames at the same path are read from disk again. With a path only that image is dropped; without one the whole cache is cleared.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image to drop. Omit to clear everything",
					},
				},
			},
		},
		{
			Name:        "ball_color_classes",
			Description: "List the color classes the detector uses, in detection order, with their HSV bounds and a representative RGB swatch.",
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

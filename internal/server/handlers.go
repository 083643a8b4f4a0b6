package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ball_detect", "ball_mask").
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
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
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
//  3. Loads the frame through the image cache
//  4. Calls the detector or an imaging helper
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Detection
	case "ball_detect":
		return s.handleBallDetect(args)
	case "ball_annotate":
		return s.handleBallAnnotate(args)

	// Calibration
	case "ball_sample_hsv":
		return s.handleBallSampleHSV(args)
	case "ball_mask":
		return s.handleBallMask(args)
	case "ball_grid":
		return s.handleBallGrid(args)
	case "ball_color_classes":
		return s.handleBallColorClasses()
	case "ball_cache_clear":
		return s.handleBallCacheClear(args)

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

// unmarshalArgs decodes tool arguments. Missing arguments decode as an empty
// object so that required-field checks produce a useful message.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

func requirePath(path string) error {
	if path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// === Detection Handlers ===

type ballPathArgs struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

// DetectResult is the ball_detect response.
type DetectResult struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Detections []detection.Detection `json:"detections"`
}

// AnnotateResult is the ball_annotate response.
type AnnotateResult struct {
	DetectResult
	Image *imaging.EncodedImage `json:"image"`
}

func (s *Server) loadFrame(path string) (imaging.Frame, error) {
	if err := requirePath(path); err != nil {
		return imaging.Frame{}, err
	}
	return s.cache.LoadFrame(path)
}

func (s *Server) detect(path string) (imaging.Frame, *DetectResult, error) {
	frame, err := s.loadFrame(path)
	if err != nil {
		return imaging.Frame{}, nil, err
	}
	dets, err := s.detector.Detect(frame)
	if err != nil {
		return imaging.Frame{}, nil, err
	}
	if dets == nil {
		dets = []detection.Detection{}
	}
	return frame, &DetectResult{Width: frame.Width, Height: frame.Height, Detections: dets}, nil
}

func (s *Server) handleBallDetect(args json.RawMessage) (interface{}, error) {
	var a ballPathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	_, result, err := s.detect(a.Path)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handleBallAnnotate(args json.RawMessage) (interface{}, error) {
	var a ballPathArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	frame, result, err := s.detect(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.detector.Annotate(frame, result.Detections)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(img, a.Scale)
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{DetectResult: *result, Image: encoded}, nil
}

// === Calibration Handlers ===

type ballSampleArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// SampleResult is the ball_sample_hsv response.
type SampleResult struct {
	*imaging.HSVSample
	Classes []string `json:"classes"`
}

func (s *Server) handleBallSampleHSV(args json.RawMessage) (interface{}, error) {
	var a ballSampleArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	sample, err := imaging.SampleHSV(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}

	classes := []string{}
	for _, c := range s.detector.Classes() {
		if c.Contains(sample.HSV) {
			classes = append(classes, c.Name)
		}
	}
	return &SampleResult{HSVSample: sample, Classes: classes}, nil
}

type ballMaskArgs struct {
	Path  string  `json:"path"`
	Color string  `json:"color"`
	Scale float64 `json:"scale"`
}

// MaskResult is the ball_mask response.
type MaskResult struct {
	Color  string                `json:"color"`
	Pixels int                   `json:"pixels"`
	Image  *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleBallMask(args json.RawMessage) (interface{}, error) {
	var a ballMaskArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		return nil, fmt.Errorf("color is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	mask, err := s.detector.Mask(frame, a.Color)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(mask.ToImage(), a.Scale)
	if err != nil {
		return nil, err
	}
	return &MaskResult{Color: a.Color, Pixels: mask.Count(), Image: encoded}, nil
}

type ballGridArgs struct {
	Path            string `json:"path"`
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

func (s *Server) handleBallGrid(args json.RawMessage) (interface{}, error) {
	var a ballGridArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if a.GridSpacing == 0 {
		a.GridSpacing = imaging.DefaultGridSpacing
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	labels := true
	if a.ShowCoordinates != nil {
		labels = *a.ShowCoordinates
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(imaging.GridOverlay(img, a.GridSpacing, labels, a.GridColor), 1.0)
}

// ClassInfo describes one color class for ball_color_classes.
type ClassInfo struct {
	detection.ColorClass
	Swatch string `json:"swatch"`
}

func (s *Server) handleBallColorClasses() (interface{}, error) {
	table := s.detector.Classes()
	out := make([]ClassInfo, len(table))
	for i, c := range table {
		rgb := c.Mid().RGB()
		out[i] = ClassInfo{
			ColorClass: c,
			Swatch:     fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B),
		}
	}
	return map[string]interface{}{"classes": out}, nil
}

type ballCacheArgs struct {
	Path string `json:"path"`
}

// CacheResult is the ball_cache_clear response.
type CacheResult struct {
	Cleared string `json:"cleared"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleBallCacheClear(args json.RawMessage) (interface{}, error) {
	var a ballCacheArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	cleared := "all"
	if a.Path != "" {
		s.cache.Evict(a.Path)
		cleared = a.Path
	} else {
		s.cache.Clear()
	}
	return &CacheResult{Cleared: cleared, Cached: s.cache.Len()}, nil
}

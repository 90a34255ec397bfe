package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/compositor"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/fontfit"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/index"
)

// previewMaxSide bounds the optional inline image of meme_render.
const previewMaxSide = 1024

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "meme_render", "index_search").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.logger.With("call", uuid.NewString(), "tool", params.Name)
	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Warn("tool failed", "err", err, "duration", time.Since(start))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool finished", "duration", time.Since(start))

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Rendering
	case "meme_render":
		return s.handleMemeRender(ctx, args)

	// Text
	case "meme_detect_text":
		return s.handleDetectText(ctx, args)
	case "meme_remove_text":
		return s.handleRemoveText(ctx, args)

	// Template index
	case "index_search":
		return s.handleIndexSearch(ctx, args)
	case "index_add":
		return s.handleIndexAdd(ctx, args)
	case "index_stats":
		return s.svc.Index.Stats(), nil

	// Fonts
	case "font_fit":
		return s.handleFontFit(args)

	// Diagnostics
	case "system_info":
		return systemInfo{Version: s.version, Info: s.svc.Info()}, nil

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

// decodeArgs unmarshals tool arguments. Missing arguments decode as an
// empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

var errNoPath = errors.New("path is required")

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) load() (*imaging.Source, error) {
	if a.Path == "" {
		return nil, errNoPath
	}
	return imaging.ReadFile(a.Path)
}

// === Rendering ===

type memeRenderArgs struct {
	pathArgs
	Captions     []string `json:"captions"`
	Output       string   `json:"output"`
	IncludeImage bool     `json:"include_image"`
}

type memeRenderResult struct {
	Output       string                 `json:"output"`
	Layout       compositor.Layout      `json:"layout"`
	Width        int                    `json:"width"`
	Height       int                    `json:"height"`
	UsedTemplate bool                   `json:"used_template"`
	TemplatePath string                 `json:"template_path,omitempty"`
	Similarity   float64                `json:"similarity,omitempty"`
	Regions      []detection.TextRegion `json:"regions"`
	Indexed      string                 `json:"indexed,omitempty"`
	Trace        compositor.Trace       `json:"trace"`
	ImageBase64  string                 `json:"image_base64,omitempty"`
}

func (s *Server) handleMemeRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a memeRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	res, err := s.svc.Compositor.Compose(ctx, compositor.Request{
		Source:   src,
		Captions: a.Captions,
		Path:     a.Path,
	})
	if err != nil {
		return nil, err
	}

	out := a.Output
	if out == "" {
		out = s.svc.OutputPath("meme")
	}
	if err := imaging.Save(res.Image, out); err != nil {
		return nil, err
	}

	size := res.Image.Bounds().Size()
	result := &memeRenderResult{
		Output:       out,
		Layout:       res.Layout,
		Width:        size.X,
		Height:       size.Y,
		UsedTemplate: res.UsedTemplate,
		TemplatePath: res.TemplatePath,
		Similarity:   res.Similarity,
		Regions:      res.Regions,
		Indexed:      res.Indexed,
		Trace:        res.Trace,
	}
	if a.IncludeImage {
		if result.ImageBase64, _, err = imaging.EncodeBase64PNG(res.Image, previewMaxSide); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// === Text ===

type detectTextResult struct {
	Engine  string             `json:"engine"`
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Regions []app.RegionReport `json:"regions"`
}

func (s *Server) handleDetectText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	regions, err := s.svc.DetectText(ctx, src)
	if err != nil {
		return nil, err
	}
	shape := src.Shape()
	return &detectTextResult{
		Engine:  s.svc.Detector.EngineName(),
		Width:   shape.Width,
		Height:  shape.Height,
		Regions: regions,
	}, nil
}

type removeTextArgs struct {
	pathArgs
	Output string `json:"output"`
}

type removeTextResult struct {
	Output  string `json:"output"`
	Regions int    `json:"regions"`
	Error   string `json:"inpaint_error,omitempty"`
}

func (s *Server) handleRemoveText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a removeTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	cleaned, regions, err := s.svc.Clean(ctx, src)
	if cleaned == nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	result := &removeTextResult{Output: a.Output, Regions: len(regions)}
	if err != nil {
		// The original pixels are written so the caller still gets a file.
		result.Error = err.Error()
	}
	if result.Output == "" {
		result.Output = s.svc.OutputPath("clean")
	}
	if err := imaging.Save(cleaned, result.Output); err != nil {
		return nil, err
	}
	return result, nil
}

// === Template index ===

type embedArgs struct {
	pathArgs
	Clean *bool `json:"clean"`
}

func (a embedArgs) clean() bool {
	return a.Clean == nil || *a.Clean
}

type indexSearchArgs struct {
	embedArgs
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
}

type indexSearchResult struct {
	Matches []index.Match `json:"matches"`
	Count   int           `json:"index_count"`
}

func (s *Server) handleIndexSearch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a := indexSearchArgs{K: 5}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", a.K)
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	vec, err := s.svc.Embed(ctx, src, a.clean())
	if err != nil {
		return nil, err
	}
	return &indexSearchResult{
		Matches: s.svc.Index.SearchTopK(vec, a.K, a.Threshold),
		Count:   s.svc.Index.Len(),
	}, nil
}

type indexAddResult struct {
	Path  string `json:"path"`
	Added bool   `json:"added"`
	Count int    `json:"index_count"`
}

func (s *Server) handleIndexAdd(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a embedArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	if s.svc.Index.Contains(a.Path) {
		return &indexAddResult{Path: a.Path, Count: s.svc.Index.Len()}, nil
	}
	vec, err := s.svc.Embed(ctx, src, a.clean())
	if err != nil {
		return nil, err
	}
	added, err := s.svc.Index.Add(ctx, a.Path, vec)
	if err != nil {
		return nil, err
	}
	return &indexAddResult{Path: a.Path, Added: added, Count: s.svc.Index.Len()}, nil
}

// === Fonts ===

type fontFitArgs struct {
	Text    string  `json:"text"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	MinSize int     `json:"min_size"`
	MaxSize int     `json:"max_size"`
}

type fontFitResult struct {
	Size   int    `json:"size"`
	Width  int    `json:"text_width"`
	Height int    `json:"text_height"`
	Font   string `json:"font"`
}

func (s *Server) handleFontFit(args json.RawMessage) (interface{}, error) {
	a := fontFitArgs{MinSize: 10, MaxSize: 100}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive, got %gx%g", a.Width, a.Height)
	}
	if a.MinSize <= 0 || a.MinSize > a.MaxSize {
		return nil, fmt.Errorf("invalid size bounds [%d, %d]", a.MinSize, a.MaxSize)
	}
	r := s.svc.Renderer
	size := r.Fit(a.Text, a.Width, a.Height, fontfit.NewBounds(a.MinSize, a.MaxSize))
	w, h := r.Measure(a.Text, size)
	return &fontFitResult{Size: size, Width: w, Height: h, Font: r.Font().Name()}, nil
}

// === Diagnostics ===

type systemInfo struct {
	Version string `json:"version"`
	app.Info
}

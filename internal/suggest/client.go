package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/imaging"
)

const (
	// DefaultBaseURL is the OpenAI-compatible API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is a vision-capable chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds one suggestion request.
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerMinute limits outbound calls.
	DefaultRequestsPerMinute = 20

	uploadMaxSide = 1024
)

// Config holds configuration for Client.
type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client asks an OpenAI-compatible chat completions endpoint for caption
// placements. It is safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client. A nil logger discards.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("suggest base URL must be an http(s) URL: %q", cfg.BaseURL)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:     logger,
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Suggest returns one placement per caption in the coordinates of img.
func (c *Client) Suggest(ctx context.Context, img image.Image, captions []string) ([]Suggestion, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrRequest)
	}
	if len(captions) == 0 {
		return nil, fmt.Errorf("%w: no captions", ErrInvalidSuggestion)
	}
	shape := bbox.ShapeOf(img)

	encoded, _, err := imaging.EncodeBase64PNG(img, uploadMaxSide)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding image: %v", ErrRequest, err)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Prompt(shape, captions)},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/png;base64," + encoded}},
			},
		}},
		Temperature:    0.2,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrRequest, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: model returned status %d: %s", ErrRequest, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidSuggestion, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrInvalidSuggestion)
	}
	c.logger.Debug("suggestion received", "model", c.model, "captions", len(captions), "elapsed", time.Since(start))

	return Parse(out.Choices[0].Message.Content, len(captions), shape)
}

// Prompt builds the placement request for captions on an image of shape.
func Prompt(shape bbox.Shape, captions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This meme template is %dx%d pixels. Place %d captions on it.\n\n", shape.Width, shape.Height, len(captions))
	for i, c := range captions {
		fmt.Fprintf(&b, "text%d: %q\n", i+1, c)
	}
	b.WriteString(`
Keep captions off the main subject, leave margins from the edges and make
each area roughly 15-20% of the image height. Use classic top and bottom
placement for two captions and spread more captions evenly.

Answer with one JSON object and nothing else:
{"text1": {"bbox": [[x1, y1], [x2, y1], [x2, y2], [x1, y2]], "font_size": 40}, ...}

Coordinates are pixels in the image above, corners in the order top-left,
top-right, bottom-right, bottom-left.
`)
	return b.String()
}

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/memezap/internal/imaging"
)

const (
	// DefaultBaseURL is the default embedding service URL.
	DefaultBaseURL = "http://localhost:8090"

	// DefaultModel is the default image embedding model.
	DefaultModel = "clip-vit-b-32"

	// DefaultTimeout bounds one extraction request.
	DefaultTimeout = 120 * time.Second

	// uploadMaxSide caps the longer side of the uploaded image.
	uploadMaxSide = 512
)

// HTTPConfig holds configuration for HTTPExtractor.
type HTTPConfig struct {
	// BaseURL of the embedding service. Defaults to DefaultBaseURL.
	BaseURL string

	// Model name sent with every request. Defaults to DefaultModel.
	Model string

	// Dimensions, when set, is checked against every response.
	Dimensions int

	// Timeout per request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// HTTPExtractor calls an image embedding service over HTTP.
//
// It POSTs {"model", "image"} with a base64 PNG to <BaseURL>/embed and
// accepts {"embedding": [...]} or {"embeddings": [[...]]}.
type HTTPExtractor struct {
	baseURL    string
	model      string
	dim        int
	httpClient *http.Client
}

type embedRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

type embedResponse struct {
	Embedding  []float32   `json:"embedding"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewHTTP creates an HTTPExtractor.
func NewHTTP(cfg HTTPConfig) (*HTTPExtractor, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("embedding target must be an http(s) URL: %q", cfg.BaseURL)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPExtractor{
		baseURL:    baseURL,
		model:      model,
		dim:        cfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (e *HTTPExtractor) Name() string { return "http:" + e.model }

func (e *HTTPExtractor) Dimension() int { return e.dim }

// Extract uploads img and returns its normalized embedding.
func (e *HTTPExtractor) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrExtraction)
	}
	encoded, _, err := imaging.EncodeBase64PNG(img, uploadMaxSide)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding image: %v", ErrExtraction, err)
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Image: encoded})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrExtraction, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %w", ErrExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: service returned status %d: %s", ErrExtraction, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrExtraction, err)
	}
	vec := out.Embedding
	if len(vec) == 0 && len(out.Embeddings) > 0 {
		vec = out.Embeddings[0]
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrExtraction)
	}
	if e.dim > 0 && len(vec) != e.dim {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrExtraction, e.dim, len(vec))
	}
	return normalize(vec)
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

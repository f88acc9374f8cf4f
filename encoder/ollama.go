package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaBase = "http://localhost:11434"

// OllamaEncoder calls the Ollama local embed API (no API key required).
type OllamaEncoder struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OllamaConfig configures the Ollama encoder.
type OllamaConfig struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// NewOllamaEncoder creates an Ollama encoder.
func NewOllamaEncoder(cfg OllamaConfig) *OllamaEncoder {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEncoder{
		BaseURL:    strings.TrimSuffix(base, "/"),
		Model:      model,
		HTTPClient: client,
	}
}

type ollamaEmbedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Encode implements Encoder.
func (e *OllamaEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	return EncodeBatches(ctx, sentences, opts, e.encodeBatch)
}

func (e *OllamaEncoder) encodeBatch(ctx context.Context, batch []string) ([][]float32, error) {
	body := ollamaEmbedReq{Model: e.Model, Input: batch}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("ollama encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/api/embed", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api error %d: %s", resp.StatusCode, string(bs))
	}
	var out ollamaEmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ollama decode: %w", err)
	}
	if len(out.Embeddings) != len(batch) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d inputs", len(out.Embeddings), len(batch))
	}
	return out.Embeddings, nil
}

package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/klejdi94/bitext/cost"
)

const defaultOpenAIEmbedBase = "https://api.openai.com/v1"

// OpenAIEncoder calls the OpenAI embeddings API, one request per batch.
type OpenAIEncoder struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Tracker, if set, records token usage reported by the API.
	Tracker *cost.Tracker
}

// NewOpenAIEncoder creates an encoder using the OpenAI embeddings API.
func NewOpenAIEncoder(apiKey string) *OpenAIEncoder {
	return &OpenAIEncoder{
		APIKey:     apiKey,
		Model:      "text-embedding-3-small",
		BaseURL:    defaultOpenAIEmbedBase,
		HTTPClient: http.DefaultClient,
	}
}

type openAIEmbedReq struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResp struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage *struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Encode implements Encoder.
func (e *OpenAIEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("openai encoder: API key required")
	}
	return EncodeBatches(ctx, sentences, opts, e.encodeBatch)
}

func (e *OpenAIEncoder) encodeBatch(ctx context.Context, batch []string) ([][]float32, error) {
	model := e.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	body := openAIEmbedReq{Input: batch, Model: model}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/embeddings", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai embeddings %d: %s", resp.StatusCode, string(bs))
	}
	var out openAIEmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(batch) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(out.Data), len(batch))
	}
	if e.Tracker != nil && out.Usage != nil {
		e.Tracker.Record(model, out.Usage.PromptTokens)
	}
	// The API echoes an index per vector; reorder so vectors[i] matches batch[i].
	vectors := make([][]float32, len(batch))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

package encoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEncoder is a deterministic test encoder: one vector per sentence,
// derived from the sentence bytes.
func hashEncoder(t *testing.T) Encoder {
	t.Helper()
	return EncoderFunc(func(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
		out := make([][]float32, len(sentences))
		for i, s := range sentences {
			out[i] = []float32{float32(len(s)), float32(s[0])}
		}
		return out, nil
	})
}

func TestEncodeBatches_PreservesOrder(t *testing.T) {
	sentences := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	var batchSizes []int
	vectors, err := EncodeBatches(context.Background(), sentences, Options{BatchSize: 2},
		func(ctx context.Context, batch []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(batch))
			out := make([][]float32, len(batch))
			for i, s := range batch {
				out[i] = []float32{float32(len(s))}
			}
			return out, nil
		})
	require.NoError(t, err)
	require.Len(t, vectors, 5)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
	for i := range sentences {
		assert.Equal(t, float32(len(sentences[i])), vectors[i][0])
	}
}

func TestEncodeBatches_DefaultBatchSize(t *testing.T) {
	sentences := make([]string, DefaultBatchSize+1)
	for i := range sentences {
		sentences[i] = "x"
	}
	calls := 0
	_, err := EncodeBatches(context.Background(), sentences, Options{},
		func(ctx context.Context, batch []string) ([][]float32, error) {
			calls++
			return make([][]float32, len(batch)), nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestOpenAIEncoder_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req openAIEmbedReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := map[string]interface{}{"usage": map[string]int{"prompt_tokens": 7}}
		var data []map[string]interface{}
		// deliberately reversed to exercise index-based reordering
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]interface{}{
				"index":     i,
				"embedding": []float32{float32(i)},
			})
		}
		resp["data"] = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	enc := NewOpenAIEncoder("test-key")
	enc.BaseURL = srv.URL
	vectors, err := enc.Encode(context.Background(), []string{"hello", "world"}, Options{})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0}, vectors[0])
	assert.Equal(t, []float32{1}, vectors[1])
}

func TestOpenAIEncoder_NoKey(t *testing.T) {
	enc := NewOpenAIEncoder("")
	_, err := enc.Encode(context.Background(), []string{"x"}, Options{})
	assert.Error(t, err)
}

func TestOllamaEncoder_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		var req ollamaEmbedReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := ollamaEmbedResp{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			out.Embeddings[i] = []float32{float32(i), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	enc := NewOllamaEncoder(OllamaConfig{BaseURL: srv.URL})
	vectors, err := enc.Encode(context.Background(), []string{"a", "b"}, Options{})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 1}, vectors[1])
}

func TestOllamaEncoder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	enc := NewOllamaEncoder(OllamaConfig{BaseURL: srv.URL})
	_, err := enc.Encode(context.Background(), []string{"a"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

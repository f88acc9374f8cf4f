package results

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Record(ctx, Run{Name: "en-fr", Epoch: 0, Score: 0.5, AccSrc2Trg: 0.4, AccTrg2Src: 0.6}))
	require.NoError(t, store.Record(ctx, Run{Name: "en-fr", Epoch: 1, Score: 0.9, AccSrc2Trg: 0.9, AccTrg2Src: 0.9}))
	require.NoError(t, store.Record(ctx, Run{Name: "en-de", Epoch: 0, Score: 0.7}))

	agg, err := store.Query(ctx, Query{GroupBy: "name"})
	require.NoError(t, err)
	require.Len(t, agg, 2)

	byKey := map[string]Aggregate{}
	for _, a := range agg {
		byKey[a.Key] = a
	}
	enfr := byKey["en-fr"]
	assert.Equal(t, int64(2), enfr.Runs)
	assert.InDelta(t, 0.7, enfr.AvgScore, 1e-9)
	assert.InDelta(t, 0.9, enfr.BestScore, 1e-9)
	assert.InDelta(t, 0.65, enfr.AvgAccSrc2Trg, 1e-9)
}

func TestMemoryStore_NameFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Record(ctx, Run{Name: "en-fr", Score: 1}))
	require.NoError(t, store.Record(ctx, Run{Name: "en-de", Score: 0}))
	agg, err := store.Query(ctx, Query{Name: "en-fr"})
	require.NoError(t, err)
	require.Len(t, agg, 1)
	assert.Equal(t, int64(1), agg[0].Runs)
}

func TestMemoryStore_Bounded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Run{Name: "x", Score: float64(i)}))
	}
	agg, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, agg, 1)
	assert.Equal(t, int64(2), agg[0].Runs)
}

func TestMemoryStore_TimeWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Record(ctx, Run{Name: "x", Score: 1, At: old}))
	require.NoError(t, store.Record(ctx, Run{Name: "x", Score: 0}))
	agg, err := store.Query(ctx, Query{From: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, agg, 1)
	assert.Equal(t, int64(1), agg[0].Runs)
}

func TestServer_RecordAndAggregates(t *testing.T) {
	store := NewMemoryStore(0)
	srv := httptest.NewServer(NewServer(store, "").Handler())
	defer srv.Close()

	body := `{"name":"en-fr","epoch":1,"steps":100,"acc_src2trg":0.8,"acc_trg2src":0.9,"score":0.85}`
	resp, err := http.Post(srv.URL+"/record", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/aggregates?group_by=name")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Aggregates []Aggregate `json:"aggregates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Aggregates, 1)
	assert.Equal(t, "en-fr", out.Aggregates[0].Key)
	assert.InDelta(t, 0.85, out.Aggregates[0].AvgScore, 1e-9)
}

func TestServer_RecordRequiresName(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewMemoryStore(0), "").Handler())
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/record", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

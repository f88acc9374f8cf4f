// Package results: Redis Store for persistent run history.
package results

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "bitext:results:runs"

// RedisStore implements Store using Redis (sorted set by timestamp, value = JSON Run).
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a store that uses the given Redis client.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

type redisRun struct {
	Name       string  `json:"name"`
	Epoch      int     `json:"epoch"`
	Steps      int     `json:"steps"`
	AccSrc2Trg float64 `json:"acc_src2trg"`
	AccTrg2Src float64 `json:"acc_trg2src"`
	Score      float64 `json:"score"`
	At         string  `json:"at"` // RFC3339
}

// Record implements Store.
func (r *RedisStore) Record(ctx context.Context, run Run) error {
	if run.At.IsZero() {
		run.At = time.Now()
	}
	score := float64(run.At.UnixNano()) / 1e9
	payload := redisRun{
		Name:       run.Name,
		Epoch:      run.Epoch,
		Steps:      run.Steps,
		AccSrc2Trg: run.AccSrc2Trg,
		AccTrg2Src: run.AccTrg2Src,
		Score:      run.Score,
		At:         run.At.Format(time.RFC3339),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.ZAdd(ctx, r.key, redis.Z{Score: score, Member: string(raw)}).Err()
}

// Query implements Store by reading from the sorted set and aggregating in memory.
func (r *RedisStore) Query(ctx context.Context, q Query) ([]Aggregate, error) {
	min, max := "-inf", "+inf"
	if !q.From.IsZero() {
		min = strconv.FormatFloat(float64(q.From.UnixNano())/1e9, 'f', -1, 64)
	}
	if !q.To.IsZero() {
		max = strconv.FormatFloat(float64(q.To.UnixNano())/1e9, 'f', -1, 64)
	}
	const batch = 10000
	var records []Run
	for offset := int64(0); ; offset += batch {
		vals, err := r.client.ZRangeByScoreWithScores(ctx, r.key, &redis.ZRangeBy{
			Min: min, Max: max, Offset: offset, Count: batch,
		}).Result()
		if err != nil {
			return nil, err
		}
		for _, z := range vals {
			mem, ok := z.Member.(string)
			if !ok {
				continue
			}
			var rr redisRun
			if err := json.Unmarshal([]byte(mem), &rr); err != nil {
				continue
			}
			at, _ := time.Parse(time.RFC3339, rr.At)
			records = append(records, Run{
				Name:       rr.Name,
				Epoch:      rr.Epoch,
				Steps:      rr.Steps,
				AccSrc2Trg: rr.AccSrc2Trg,
				AccTrg2Src: rr.AccTrg2Src,
				Score:      rr.Score,
				At:         at,
			})
		}
		if len(vals) < batch {
			break
		}
	}
	return aggregate(records, q), nil
}

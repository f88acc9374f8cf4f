// Command results-server exposes the evaluation results store over HTTP (POST /record, GET /aggregates, GET /health).
package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/klejdi94/bitext/results"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	storeKind := flag.String("store", "memory", "Store: memory, postgres, redis")
	maxRuns := flag.Int("max", 100000, "Max in-memory runs when store=memory (0 = unbounded)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN when store=postgres (or RESULTS_DSN env)")
	redisAddr := flag.String("redis", "", "Redis address when store=redis (e.g. localhost:6379, or RESULTS_REDIS env)")
	redisKey := flag.String("redis-key", "", "Redis key for runs (default: bitext:results:runs)")
	pgTable := flag.String("table", "eval_runs", "Postgres table name when store=postgres")
	flag.Parse()

	if v := os.Getenv("RESULTS_DSN"); v != "" && *dsn == "" {
		*dsn = v
	}
	if v := os.Getenv("RESULTS_REDIS"); v != "" && *redisAddr == "" {
		*redisAddr = v
	}

	var store results.Store
	switch *storeKind {
	case "memory":
		store = results.NewMemoryStore(*maxRuns)
	case "postgres":
		if *dsn == "" {
			log.Fatal("postgres store requires -dsn or RESULTS_DSN")
		}
		db, err := openPostgres(*dsn)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		pg, err := results.NewPostgresStore(db, *pgTable)
		if err != nil {
			log.Fatalf("postgres store: %v", err)
		}
		store = pg
	case "redis":
		if *redisAddr == "" {
			log.Fatal("redis store requires -redis or RESULTS_REDIS")
		}
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		store = results.NewRedisStore(rdb, *redisKey)
	default:
		log.Fatalf("unknown store: %s", *storeKind)
	}

	srv := results.NewServer(store, *addr)
	log.Printf("results server listening on %s (store=%s)", *addr, *storeKind)
	log.Fatal(srv.ListenAndServe())
}

func openPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

// Command bitext is a CLI for managing parallel corpora and running translation
// matching evaluations (eval, list, store, get, delete).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/klejdi94/bitext/core"
	"github.com/klejdi94/bitext/corpus"
	"github.com/klejdi94/bitext/encoder"
	"github.com/klejdi94/bitext/evaluator"
	"github.com/klejdi94/bitext/results"
)

func main() {
	corpusDir := flag.String("corpus-dir", ".bitext", "Corpus directory (file backend)")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	store, err := corpus.NewFileStore(*corpusDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "corpus store:", err)
		os.Exit(1)
	}
	ctx := context.Background()
	cmd := args[0]
	rest := args[1:]
	switch cmd {
	case "eval":
		eval(ctx, store, rest)
	case "list":
		list(ctx, store)
	case "store":
		storeCmd(ctx, store, rest)
	case "get":
		get(ctx, store, rest)
	case "delete":
		deleteCmd(ctx, store, rest)
	case "runs":
		runs(rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: bitext [ -corpus-dir <dir> ] <command> [args]

Commands:
  eval [flags] <name|file.tsv>  Evaluate translation matching accuracy
  list                          List stored corpora
  store <name> <file.tsv>       Store a TSV corpus (source<TAB>target per line)
  get <name>                    Print a stored corpus as TSV
  delete <name>                 Delete a stored corpus
  runs [flags]                  Query run aggregates from a results server

Corpora: file-based in -corpus-dir directory (default: .bitext)
Run "bitext eval -h" for evaluation flags.
`)
}

func eval(ctx context.Context, store corpus.Store, args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	encoderKind := fs.String("encoder", "openai", "Encoder backend: openai, ollama")
	model := fs.String("model", "", "Embedding model (default per backend)")
	batchSize := fs.Int("batch-size", encoder.DefaultBatchSize, "Encoding batch size")
	progress := fs.Bool("progress", false, "Show a progress bar while encoding")
	wrong := fs.Bool("wrong-matches", false, "Print wrong matches with top candidates")
	outputPath := fs.String("output", "", "Directory for the results CSV (empty: no CSV)")
	epoch := fs.Int("epoch", -1, "Training epoch for the CSV row")
	steps := fs.Int("steps", -1, "Training steps for the CSV row")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "eval: expected a corpus name or TSV file")
		os.Exit(1)
	}
	c, err := loadCorpus(ctx, store, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "eval:", err)
		os.Exit(1)
	}
	enc, err := buildEncoder(*encoderKind, *model)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eval:", err)
		os.Exit(1)
	}
	ev, err := evaluator.NewTranslationCorpus(c,
		evaluator.WithBatchSize(*batchSize),
		evaluator.WithProgressBar(*progress),
		evaluator.WithWrongMatches(*wrong),
		evaluator.WithCSV(*outputPath != ""),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eval:", err)
		os.Exit(1)
	}
	res, err := ev.Evaluate(ctx, enc, evaluator.EvalOptions{
		OutputPath: *outputPath,
		Epoch:      *epoch,
		Steps:      *steps,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "eval:", err)
		os.Exit(1)
	}
	fmt.Printf("acc_src2trg: %.4f\nacc_trg2src: %.4f\nscore: %.4f\n",
		res.AccSrc2Trg, res.AccTrg2Src, res.Score)
}

// loadCorpus resolves the argument as a stored corpus name first, then as a
// TSV file on disk.
func loadCorpus(ctx context.Context, store corpus.Store, arg string) (*core.Corpus, error) {
	c, err := store.Load(ctx, arg)
	if err == nil {
		return c, nil
	}
	if _, statErr := os.Stat(arg); statErr != nil {
		return nil, err
	}
	return core.ReadTSV(arg, arg)
}

func buildEncoder(kind, model string) (encoder.Encoder, error) {
	switch kind {
	case "ollama":
		return encoder.NewOllamaEncoder(encoder.OllamaConfig{
			BaseURL: os.Getenv("OLLAMA_BASE_URL"),
			Model:   model,
		}), nil
	case "openai":
		enc := encoder.NewOpenAIEncoder(os.Getenv("OPENAI_API_KEY"))
		if model != "" {
			enc.Model = model
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unknown encoder backend: %s", kind)
	}
}

func list(ctx context.Context, store corpus.Store) {
	names, err := store.List(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func storeCmd(ctx context.Context, store corpus.Store, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "store: expected <name> <file.tsv>")
		os.Exit(1)
	}
	c, err := core.ReadTSV(args[0], args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := store.Save(ctx, c); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("stored %s (%d pairs)\n", c.Name, c.Len())
}

func get(ctx context.Context, store corpus.Store, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "get: expected <name>")
		os.Exit(1)
	}
	c, err := store.Load(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := c.WriteTSV(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runs(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	api := fs.String("api", "http://localhost:8080", "Results server base URL (or BITEXT_RESULTS_API env)")
	name := fs.String("name", "", "Filter by corpus name")
	groupBy := fs.String("group-by", "name", "Group aggregates by: name, day, hour")
	limit := fs.Int("limit", 0, "Max runs to aggregate (0 = all)")
	fs.Parse(args)
	if v := os.Getenv("BITEXT_RESULTS_API"); v != "" && *api == "http://localhost:8080" {
		*api = v
	}

	q := url.Values{}
	q.Set("group_by", *groupBy)
	if *name != "" {
		q.Set("name", *name)
	}
	if *limit > 0 {
		q.Set("limit", strconv.Itoa(*limit))
	}
	resp, err := http.Get(*api + "/aggregates?" + q.Encode())
	if err != nil {
		fmt.Fprintln(os.Stderr, "runs:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "runs: %s: %s\n", resp.Status, body)
		os.Exit(1)
	}
	var out struct {
		Aggregates []results.Aggregate `json:"aggregates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintln(os.Stderr, "runs:", err)
		os.Exit(1)
	}
	for _, a := range out.Aggregates {
		fmt.Printf("%s\truns=%d\tavg_score=%.4f\tbest=%.4f\tsrc2trg=%.4f\ttrg2src=%.4f\n",
			a.Key, a.Runs, a.AvgScore, a.BestScore, a.AvgAccSrc2Trg, a.AvgAccTrg2Src)
	}
}

func deleteCmd(ctx context.Context, store corpus.Store, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "delete: expected <name>")
		os.Exit(1)
	}
	if err := store.Delete(ctx, args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("deleted", args[0])
}

// Command eval-operator runs a Kubernetes controller that evaluates EvalJob CRs
// against a corpus store and reports accuracy in the CR status.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/klejdi94/bitext/corpus"
	"github.com/klejdi94/bitext/encoder"
	"github.com/klejdi94/bitext/k8s"
	v1 "github.com/klejdi94/bitext/k8s/api/v1"
	"github.com/klejdi94/bitext/results"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

func main() {
	corpusDir := flag.String("corpus-dir", "corpora", "Directory holding corpus TSV files")
	encoderKind := flag.String("encoder", "openai", "Encoder backend: openai, ollama")
	model := flag.String("model", "", "Embedding model (default per backend)")
	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	log := ctrl.Log.WithName("setup")

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1.AddToScheme(scheme))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{Scheme: scheme})
	if err != nil {
		log.Error(err, "unable to start manager")
		os.Exit(1)
	}
	corpora, err := corpus.NewFileStore(*corpusDir)
	if err != nil {
		log.Error(err, "unable to open corpus store", "dir", *corpusDir)
		os.Exit(1)
	}
	enc, err := buildEncoder(*encoderKind, *model)
	if err != nil {
		log.Error(err, "unable to build encoder", "kind", *encoderKind)
		os.Exit(1)
	}
	reconciler := &k8s.EvalJobReconciler{
		Client:  mgr.GetClient(),
		Scheme:  mgr.GetScheme(),
		Corpora: corpora,
		Encoder: enc,
		Results: results.NewMemoryStore(0),
	}
	if err = reconciler.SetupWithManager(mgr); err != nil {
		log.Error(err, "unable to create controller")
		os.Exit(1)
	}
	if err = mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		log.Error(err, "manager exited")
		os.Exit(1)
	}
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

// Package k8s provides a Kubernetes controller that runs EvalJob CRs
// against a corpus store and encoder.
package k8s

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/klejdi94/bitext/corpus"
	"github.com/klejdi94/bitext/encoder"
	"github.com/klejdi94/bitext/evaluator"
	v1 "github.com/klejdi94/bitext/k8s/api/v1"
	"github.com/klejdi94/bitext/results"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// EvalJobReconciler reconciles EvalJob CRs by evaluating the referenced
// corpus and publishing accuracies to the CR status.
type EvalJobReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Corpora corpus.Store
	Encoder encoder.Encoder
	// Results, if set, also records each run.
	Results results.Store
}

// Reconcile loads the corpus, runs the translation evaluator, and updates status.
func (r *EvalJobReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	cr := &v1.EvalJob{}
	if err := r.Get(ctx, req.NamespacedName, cr); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	res, err := r.evaluate(ctx, cr)
	if err != nil {
		logger.Error(err, "evaluation failed", "corpus", cr.Spec.Corpus)
		cr.Status.Evaluated = false
		cr.Status.Message = err.Error()
		_ = r.Status().Update(ctx, cr)
		return ctrl.Result{}, err
	}

	cr.Status.Evaluated = true
	cr.Status.LastRunTime = time.Now().UTC().Format(time.RFC3339)
	cr.Status.AccSrc2Trg = formatAcc(res.AccSrc2Trg)
	cr.Status.AccTrg2Src = formatAcc(res.AccTrg2Src)
	cr.Status.Score = formatAcc(res.Score)
	cr.Status.Message = ""
	if err := r.Status().Update(ctx, cr); err != nil {
		return ctrl.Result{}, err
	}
	logger.Info("evaluated corpus", "corpus", cr.Spec.Corpus, "score", cr.Status.Score)
	return ctrl.Result{}, nil
}

func (r *EvalJobReconciler) evaluate(ctx context.Context, cr *v1.EvalJob) (*evaluator.Result, error) {
	c, err := r.Corpora.Load(ctx, cr.Spec.Corpus)
	if err != nil {
		return nil, err
	}
	name := cr.Spec.Name
	if name == "" {
		name = cr.Spec.Corpus
	}
	opts := []evaluator.Option{
		evaluator.WithName(name),
		evaluator.WithWrongMatches(cr.Spec.PrintWrongMatches),
		evaluator.WithCSV(false),
		evaluator.WithLogger(evaluator.NopLogger()),
	}
	if cr.Spec.BatchSize > 0 {
		opts = append(opts, evaluator.WithBatchSize(cr.Spec.BatchSize))
	}
	ev, err := evaluator.NewTranslation(c.Source, c.Target, opts...)
	if err != nil {
		return nil, err
	}
	evalOpts := evaluator.DefaultEvalOptions()
	if cr.Spec.Epoch != 0 || cr.Spec.Steps != 0 {
		evalOpts.Epoch = cr.Spec.Epoch
		evalOpts.Steps = cr.Spec.Steps
	}
	res, err := ev.Evaluate(ctx, r.Encoder, evalOpts)
	if err != nil {
		return nil, err
	}
	if r.Results != nil {
		run := results.Run{
			Name:       name,
			Epoch:      evalOpts.Epoch,
			Steps:      evalOpts.Steps,
			AccSrc2Trg: res.AccSrc2Trg,
			AccTrg2Src: res.AccTrg2Src,
			Score:      res.Score,
		}
		if err := r.Results.Record(ctx, run); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func formatAcc(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// SetupWithManager registers the reconciler with the manager.
func (r *EvalJobReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1.EvalJob{}).
		Complete(r)
}

// NewScheme returns a scheme with bitext types registered.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := v1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("add bitext scheme: %w", err)
	}
	return scheme, nil
}

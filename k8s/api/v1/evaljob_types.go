// Package v1 contains the EvalJob CRD types.
package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced

// EvalJob is the Schema for the evaljobs API: one translation-accuracy
// evaluation of a named corpus against an encoder.
type EvalJob struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec   EvalJobSpec   `json:"spec,omitempty"`
	Status EvalJobStatus `json:"status,omitempty"`
}

// EvalJobSpec defines the desired state of EvalJob.
type EvalJobSpec struct {
	// Corpus is the name of the parallel corpus in the corpus store.
	Corpus string `json:"corpus"`
	// Name labels the evaluation; defaults to the corpus name.
	Name string `json:"name,omitempty"`
	// BatchSize forwarded to the encoder (default 16).
	BatchSize int `json:"batchSize,omitempty"`
	// PrintWrongMatches enables per-mismatch debug output.
	PrintWrongMatches bool `json:"printWrongMatches,omitempty"`
	// Epoch and Steps label the run; -1/absent means standalone.
	Epoch int `json:"epoch,omitempty"`
	Steps int `json:"steps,omitempty"`
}

// EvalJobStatus defines the observed state of EvalJob.
type EvalJobStatus struct {
	Evaluated    bool   `json:"evaluated"`
	LastRunTime  string `json:"lastRunTime,omitempty"`
	AccSrc2Trg   string `json:"accSrc2Trg,omitempty"`
	AccTrg2Src   string `json:"accTrg2Src,omitempty"`
	Score        string `json:"score,omitempty"`
	Message      string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true

// EvalJobList contains a list of EvalJob.
type EvalJobList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EvalJob `json:"items"`
}

// DeepCopyObject implements runtime.Object.
func (e *EvalJob) DeepCopyObject() runtime.Object {
	if e == nil {
		return nil
	}
	out := &EvalJob{}
	e.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the receiver into out.
func (e *EvalJob) DeepCopyInto(out *EvalJob) {
	*out = *e
	out.TypeMeta = e.TypeMeta
	e.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = e.Spec
	out.Status = e.Status
}

// DeepCopyObject implements runtime.Object for EvalJobList.
func (e *EvalJobList) DeepCopyObject() runtime.Object {
	if e == nil {
		return nil
	}
	out := &EvalJobList{}
	e.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the list into out.
func (e *EvalJobList) DeepCopyInto(out *EvalJobList) {
	*out = *e
	out.TypeMeta = e.TypeMeta
	e.ListMeta.DeepCopyInto(&out.ListMeta)
	if e.Items != nil {
		out.Items = make([]EvalJob, len(e.Items))
		for i := range e.Items {
			e.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

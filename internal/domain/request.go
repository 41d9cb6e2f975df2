package domain

// CacheMode controls how the engine uses its inference cache during a run.
type CacheMode string

const (
	CacheModeOn       CacheMode = "on"
	CacheModeOff      CacheMode = "off"
	CacheModeReadOnly CacheMode = "read_only"
)

// StartEvaluationRequest carries the parameters for launching one evaluation
// run. All fields are forwarded to the engine session verbatim.
type StartEvaluationRequest struct {
	EvaluationName   string             `json:"evaluation_name"`
	DatasetName      string             `json:"dataset_name"`
	VariantName      string             `json:"variant_name"`
	Concurrency      int                `json:"concurrency"`
	CacheMode        CacheMode          `json:"cache_mode,omitempty"`
	MaxDatapoints    int                `json:"max_datapoints,omitempty"`
	PrecisionTargets map[string]float64 `json:"precision_targets,omitempty"`
}

// StartResult is the engine's start acknowledgment for a run.
type StartResult struct {
	RunID         string `json:"run_id"`
	NumDatapoints int    `json:"num_datapoints"`
}

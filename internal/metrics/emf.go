// Package metrics emits CloudWatch Embedded Metrics Format (EMF) records.
// A record is one JSON line on stdout; when the process runs on Lambda,
// CloudWatch Logs extracts the metrics from it with no API calls. Locally the
// same lines are harmless log output.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Namespace is the CloudWatch namespace used by framekit binaries.
const Namespace = "FrameKit"

// CloudWatch units used by framekit metrics.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
)

// functionDimension is set from AWS_LAMBDA_FUNCTION_NAME when present.
const functionDimension = "FunctionName"

var (
	outMu  sync.Mutex
	output io.Writer = os.Stdout
)

// SetOutput redirects flushed records to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := output
	output = w
	return prev
}

type sample struct {
	unit  string
	value float64
}

// Recorder collects one EMF record. Create one per operation; it is not safe
// for concurrent use.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	samples    map[string]sample
	properties map[string]interface{}
}

// New creates a Recorder for namespace. On Lambda the FunctionName dimension
// is added automatically.
func New(namespace string) *Recorder {
	r := &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		samples:    make(map[string]sample),
		properties: make(map[string]interface{}),
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		r.dimensions[functionDimension] = fn
	}
	return r
}

// Dimension adds an indexed key-value pair to the metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records value under name with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.samples[name] = sample{unit: unit, value: value}
	return r
}

// Count records a count of 1.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a field that is searchable in Logs Insights but is not a metric.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// document builds the EMF record. Metric definitions and dimension keys are
// sorted so output is stable.
func (r *Recorder) document(now time.Time) map[string]interface{} {
	type metricDef struct {
		Name string `json:"Name"`
		Unit string `json:"Unit"`
	}

	doc := make(map[string]interface{}, len(r.dimensions)+len(r.samples)+len(r.properties)+1)
	for k, v := range r.properties {
		doc[k] = v
	}

	names := sortedKeys(r.samples)
	defs := make([]metricDef, 0, len(names))
	for _, name := range names {
		s := r.samples[name]
		defs = append(defs, metricDef{Name: name, Unit: s.unit})
		doc[name] = s.value
	}

	dimKeys := sortedKeys(r.dimensions)
	for _, k := range dimKeys {
		doc[k] = r.dimensions[k]
	}

	doc["_aws"] = map[string]interface{}{
		"Timestamp": now.UnixMilli(),
		"CloudWatchMetrics": []map[string]interface{}{{
			"Namespace":  r.namespace,
			"Dimensions": [][]string{dimKeys},
			"Metrics":    defs,
		}},
	}
	return doc
}

// Flush writes the record as one JSON line. A recorder with no metrics writes
// nothing. Do not reuse the recorder afterwards.
func (r *Recorder) Flush() {
	if len(r.samples) == 0 {
		return
	}
	data, err := json.Marshal(r.document(time.Now()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: marshal record: %v\n", err)
		return
	}

	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(output, string(data))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

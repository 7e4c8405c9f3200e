package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })
	return &buf
}

func TestNew_AutoDimension(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "frame-lambda")

	r := New("TestNamespace")
	if r.namespace != "TestNamespace" {
		t.Errorf("expected namespace TestNamespace, got %s", r.namespace)
	}
	if r.dimensions["FunctionName"] != "frame-lambda" {
		t.Errorf("expected FunctionName dimension frame-lambda, got %s", r.dimensions["FunctionName"])
	}
}

func TestNew_NoLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	if _, ok := New("Test").dimensions["FunctionName"]; ok {
		t.Error("FunctionName dimension should be absent outside Lambda")
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	buf := captureOutput(t)
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	New(Namespace).
		Dimension("Outcome", "fallback").
		Metric("FrameAssetLoadMs", 12.5, UnitMilliseconds).
		Metric("FrameAssetLoad", 1, UnitCount).
		Property("path", "/assets/frames/oak_wood_thin_3x2.png").
		Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}
	metricsArr := cw["Metrics"].([]interface{})
	if len(metricsArr) != 2 {
		t.Fatalf("expected 2 metric definitions, got %d", len(metricsArr))
	}
	if first := metricsArr[0].(map[string]interface{}); first["Name"] != "FrameAssetLoad" {
		t.Errorf("expected metric definitions sorted by name, got %v first", first["Name"])
	}

	if doc["Outcome"] != "fallback" {
		t.Errorf("expected Outcome=fallback, got %v", doc["Outcome"])
	}
	if doc["FrameAssetLoadMs"] != 12.5 {
		t.Errorf("expected FrameAssetLoadMs=12.5, got %v", doc["FrameAssetLoadMs"])
	}
	if doc["path"] != "/assets/frames/oak_wood_thin_3x2.png" {
		t.Errorf("unexpected path property %v", doc["path"])
	}
	dims := cw["Dimensions"].([]interface{})[0].([]interface{})
	if len(dims) != 1 || dims[0] != "Outcome" {
		t.Errorf("expected dimension set [Outcome], got %v", dims)
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	buf := captureOutput(t)

	New("Test").Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecorder_Count(t *testing.T) {
	rec := New("Test")
	rec.Count("Errors")

	s, ok := rec.samples["Errors"]
	if !ok || s.value != 1 {
		t.Errorf("expected Errors=1, got %v", s.value)
	}
	if s.unit != UnitCount {
		t.Errorf("expected unit Count, got %v", s.unit)
	}
}

func TestRecorder_Chaining(t *testing.T) {
	rec := New("Test").
		Dimension("Op", "test").
		Metric("Duration", 100, UnitMilliseconds).
		Count("Calls").
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.samples["Duration"].value != 100 {
		t.Error("chaining Metric failed")
	}
	if rec.samples["Calls"].value != 1 {
		t.Error("chaining Count failed")
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}

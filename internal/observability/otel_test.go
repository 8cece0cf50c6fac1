package observability

import "testing"

func TestOtelHeadersSkipsMalformedPairs(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken ,=nokey,tenant=aid")
	h := otelHeaders()
	if len(h) != 2 || h["x-api-key"] != "abc" || h["tenant"] != "aid" {
		t.Fatalf("unexpected headers: %#v", h)
	}
}

func TestOtelSampleRatioClamps(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if got := otelSampleRatio(); got != 1 {
		t.Fatalf("want=1 got=%v", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "nope")
	if got := otelSampleRatio(); got != 0.1 {
		t.Fatalf("want=0.1 got=%v", got)
	}
}

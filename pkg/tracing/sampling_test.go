package tracing

import (
	"testing"

	"mercator-hq/europa/pkg/config"
)

// configDisabled is a baseline tracing config shared across tests.
var configDisabled = config.TracingConfig{
	Enabled:     false,
	Sampler:     SamplerRatio,
	SampleRatio: 0.1,
	Exporter:    "otlp",
	ServiceName: "europa-test",
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{name: "always", strategy: SamplerAlways},
		{name: "never", strategy: SamplerNever},
		{name: "ratio", strategy: SamplerRatio, ratio: 0.5},
		{name: "ratio zero", strategy: SamplerRatio, ratio: 0.0},
		{name: "ratio one", strategy: SamplerRatio, ratio: 1.0},
		{name: "ratio negative", strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{name: "ratio above one", strategy: SamplerRatio, ratio: 1.1, wantErr: true},
		{name: "unknown strategy", strategy: "coinflip", wantErr: true},
		{name: "empty strategy", strategy: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("createSampler() error = %v", err)
			}
			if sampler == nil {
				t.Fatal("expected non-nil sampler")
			}
			// Samplers are ParentBased-wrapped for cross-service consistency.
			if desc := sampler.Description(); len(desc) == 0 {
				t.Error("expected sampler description")
			}
		})
	}
}

package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerDescription(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "ParentBased{root:AlwaysOnSampler"},
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := Config{SampleRatio: tt.ratio}.Sampler().Description()
		assert.Contains(t, got, tt.want)
	}
}

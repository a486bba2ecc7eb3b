package dynamics

import (
	"errors"
	"strings"
	"testing"
)

func validCompressorParams() CompressorParameters {
	return CompressorParameters{
		Channels:  2,
		Attack:    0.01,
		Release:   0.1,
		Threshold: -20,
		Factor:    4,
	}
}

func TestValidateCompressorParameters(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CompressorParameters)
		wantErr bool
	}{
		{"valid", func(p *CompressorParameters) {}, false},
		{"zero channels", func(p *CompressorParameters) { p.Channels = 0 }, true},
		{"zero attack", func(p *CompressorParameters) { p.Attack = 0 }, true},
		{"negative attack", func(p *CompressorParameters) { p.Attack = -0.01 }, true},
		{"zero release", func(p *CompressorParameters) { p.Release = 0 }, true},
		{"release equals attack", func(p *CompressorParameters) { p.Release = 0.01 }, true},
		{"release below attack", func(p *CompressorParameters) { p.Release = 0.005 }, true},
		{"monitor channel out of range", func(p *CompressorParameters) { p.MonitorChannels = []int{0, 2} }, true},
		{"negative monitor channel", func(p *CompressorParameters) { p.MonitorChannels = []int{-1} }, true},
		{"process channel out of range", func(p *CompressorParameters) { p.ProcessChannels = []int{2} }, true},
		{"explicit valid channels", func(p *CompressorParameters) {
			p.MonitorChannels = []int{0, 1}
			p.ProcessChannels = []int{1}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCompressorParams()
			tt.mutate(&p)

			err := ValidateCompressorParameters(p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCompressorParameters() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateCompressorParametersCitesMaxIndex(t *testing.T) {
	p := validCompressorParams()
	p.MonitorChannels = []int{2}

	err := ValidateCompressorParameters(p)
	if err == nil {
		t.Fatal("expected error for out-of-range monitor channel")
	}

	if !strings.Contains(err.Error(), "max is: 1") {
		t.Errorf("error %q does not cite the max valid index", err.Error())
	}
}

func TestValidateLimiterParametersAlwaysSucceeds(t *testing.T) {
	tests := []struct {
		name   string
		params LimiterParameters
	}{
		{"typical", LimiterParameters{ClipLimit: -3, Lookahead: 64}},
		{"negative lookahead", LimiterParameters{ClipLimit: 0, Lookahead: -10}},
		{"extreme clip limit", LimiterParameters{ClipLimit: -200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateLimiterParameters(tt.params); err != nil {
				t.Errorf("ValidateLimiterParameters() = %v, want nil", err)
			}
		})
	}
}

func TestResolveChannels(t *testing.T) {
	got := resolveChannels(nil, 3)
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("resolveChannels(nil, 3) = %v, want [0 1 2]", got)
	}

	explicit := []int{2, 0}
	got = resolveChannels(explicit, 3)
	if len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Errorf("resolveChannels kept order wrong: %v", got)
	}

	// The resolved list must be a copy.
	got[0] = 1
	if explicit[0] != 2 {
		t.Error("resolveChannels aliased the input slice")
	}
}

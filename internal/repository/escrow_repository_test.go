package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEscrow(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		runnerFee  float64
		payRunner  bool
		wantVendor float64
		wantFee    float64
	}{
		{"delivery with runner", 50, 5, true, 45, 5},
		{"pickup order", 50, 5, false, 50, 0},
		{"delivery never assigned", 50, 5, false, 50, 0},
		{"fee larger order", 7.25, 5, true, 2.25, 5},
		{"fractional fee rounds", 30, 4.999, true, 25, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor, fee := splitEscrow(tt.amount, tt.runnerFee, tt.payRunner)
			assert.Equal(t, tt.wantVendor, vendor)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.amount, roundCents(vendor+fee))
		})
	}
}

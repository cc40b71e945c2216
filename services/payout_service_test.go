package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAvailableBalance(t *testing.T) {
	cases := []struct {
		name     string
		approved string
		reserved string
		want     string
	}{
		{"simple surplus", "150.00", "50.00", "100.00"},
		{"exactly drained", "75.50", "75.50", "0.00"},
		{"nothing approved", "0.00", "0.00", "0.00"},
		{"over-reserved clamps to zero", "40.00", "60.00", "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			approved, _ := decimal.NewFromString(tc.approved)
			reserved, _ := decimal.NewFromString(tc.reserved)
			want, _ := decimal.NewFromString(tc.want)

			if got := AvailableBalance(approved, reserved); !got.Equal(want) {
				t.Errorf("AvailableBalance(%s, %s) = %s, want %s", tc.approved, tc.reserved, got, tc.want)
			}
		})
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{minor: 0, want: "0.00"},
		{minor: 5, want: "0.05"},
		{minor: 1250, want: "12.50"},
		{minor: 123456, want: "1234.56"},
		{minor: -99, want: "-0.99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.minor))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "12", want: 1200},
		{input: "12.5", want: 1250},
		{input: "12.50", want: 1250},
		{input: " 0.05 ", want: 5},
		{input: "-0.99", want: -99},
		{input: "", wantErr: true},
		{input: "12.", wantErr: true},
		{input: ".5", wantErr: true},
		{input: "1.234", wantErr: true},
		{input: "12,50", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "+5", wantErr: true},
		{input: "1.-5", wantErr: true},
		{input: "--5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, FormatAmount(got), FormatAmount(tt.want))
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2026, 12)

	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestGoal_Progress(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		want float64
	}{
		{name: "empty", goal: Goal{TargetAmount: 1000}, want: 0},
		{name: "half", goal: Goal{TargetAmount: 1000, CurrentAmount: 500}, want: 50},
		{name: "capped", goal: Goal{TargetAmount: 1000, CurrentAmount: 1500}, want: 100},
		{name: "zero target", goal: Goal{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.goal.Progress(), 0.001)
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType("expense")
	require.NoError(t, err)
	assert.Equal(t, TransactionExpense, got)

	_, err = ParseTransactionType("transfer")
	assert.Error(t, err)
}

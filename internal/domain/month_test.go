package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "2024-02"},
		{name: "far future is accepted", input: "2999-11"},
		{name: "out of range month keeps its shape", input: "2024-13"},
		{name: "month zero", input: "2024-00"},
		{name: "missing zero padding", input: "2024-2", wantErr: true},
		{name: "full date", input: "2024-02-03", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseMonthKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidMonthKey))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MonthKey(tt.input), key)
		})
	}
}

func TestMonthKeyOf(t *testing.T) {
	assert.Equal(t, MonthKey("2024-01"), MonthKeyOf("2024-01-20"))
	assert.Equal(t, MonthKey("2024-03"), Expense{Date: "2024-03-02"}.Month())
	assert.True(t, MonthKey("2024-02").Contains("2024-02-29"))
	assert.False(t, MonthKey("2024-02").Contains("2024-03-01"))
}

func TestMonthKey_LabelAndTime(t *testing.T) {
	key := MonthKeyFromTime(time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, MonthKey("2024-02"), key)
	assert.Equal(t, "February 2024", key.Label())

	year, month, err := key.YearMonth()
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, month)

	_, _, err = MonthKey("bogus").YearMonth()
	assert.ErrorIs(t, err, ErrInvalidMonthKey)
}

func TestMonthKey_OutOfRangeMonthRollsOver(t *testing.T) {
	assert.Equal(t, "January 2025", MonthKey("2024-13").Label())
	assert.Equal(t, "December 2023", MonthKey("2024-00").Label())

	year, month, err := MonthKey("2024-13").YearMonth()
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 13, month)
}

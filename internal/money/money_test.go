package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"33.335", "33.34"},
		{"0.125", "0.13"},
		{"7", "7"},
	}
	for _, tt := range tests {
		assert.True(t, dec(tt.want).Equal(Round(dec(tt.in))), "Round(%s) = %s", tt.in, Round(dec(tt.in)))
	}
}

func TestIsMinorUnit(t *testing.T) {
	assert.True(t, IsMinorUnit(dec("12.34")))
	assert.True(t, IsMinorUnit(dec("12.30")))
	assert.True(t, IsMinorUnit(dec("12")))
	assert.False(t, IsMinorUnit(dec("12.345")))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		part  string
		total string
		want  string
	}{
		{"quarter", "250", "1000", "25"},
		{"zero total", "250", "0", "0"},
		{"negative total", "10", "-5", "0"},
		{"third", "1", "3", "33.33"},
		{"two thirds", "2", "3", "66.67"},
		{"over budget", "1500", "1000", "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(dec(tt.part), dec(tt.total))
			assert.True(t, dec(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		amount string
		n      int
		want   []string
	}{
		{"100", 3, []string{"33.33", "33.33", "33.34"}},
		{"100", 4, []string{"25", "25", "25", "25"}},
		{"10", 6, []string{"1.67", "1.67", "1.67", "1.67", "1.67", "1.65"}},
		{"0.05", 2, []string{"0.03", "0.02"}},
		{"1234.56", 1, []string{"1234.56"}},
	}
	for _, tt := range tests {
		shares, err := Split(dec(tt.amount), tt.n)
		require.NoError(t, err)
		require.Len(t, shares, tt.n)

		sum := decimal.Zero
		for i, s := range shares {
			assert.True(t, dec(tt.want[i]).Equal(s), "Split(%s, %d)[%d] = %s", tt.amount, tt.n, i, s)
			sum = sum.Add(s)
		}
		assert.True(t, sum.Equal(dec(tt.amount)), "shares must sum to %s, got %s", tt.amount, sum)
	}
}

func TestSplit_InvalidCount(t *testing.T) {
	_, err := Split(dec("10"), 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPercentOf(t *testing.T) {
	assert.True(t, dec("30").Equal(PercentOf(dec("100"), dec("30"))))
	assert.True(t, dec("26.07").Equal(PercentOf(dec("124.15"), dec("21"))))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"12,34", "12.34", false},
		{" $45.00 ", "45", false},
		{"-7.5", "-7.5", false},
		{"1,234.50", "1234.50", false},
		{"1.234,50", "1234.50", false},
		{"$1,234,567.89", "1234567.89", false},
		{"1.234.567", "1234567", false},
		{"1.234.567,5", "1234567.5", false},
		{"1,2,3.4.5", "", true},
		{"", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount, "Parse(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.True(t, dec(tt.want).Equal(got), "Parse(%q) = %s", tt.in, got)
	}
}

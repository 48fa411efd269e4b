package normalization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
)

func TestFraction(t *testing.T) {
	tests := []struct {
		name     string
		raw      float64
		expected float64
	}{
		{name: "ratio", raw: 0.95, expected: 95},
		{name: "exactly one", raw: 1.0, expected: 100},
		{name: "scientific notation", raw: 9.5e-1, expected: 95},
		{name: "already percent", raw: 87.5, expected: 87.5},
		{name: "above 100 is not clamped", raw: 140, expected: 140},
		{name: "zero passes through", raw: 0, expected: 0},
		{name: "negative passes through", raw: -0.5, expected: -0.5},
		{name: "minutes", raw: 4.8, expected: 4.8},
		{name: "nan", raw: math.NaN(), expected: 0},
		{name: "inf", raw: math.Inf(1), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Fraction(tt.raw), 1e-9)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(catalog.Default())
	for _, v := range []float64{0, -3, 0.02, 0.5, 1, 1.0001, 4.5, 99, 250} {
		once := n.Normalize("satEP", v)
		assert.Equal(t, once, n.Normalize("satEP", once), "value %v", v)
	}
}

func TestNormalize_UnknownKPIIsNoOp(t *testing.T) {
	n := New(catalog.Default())
	assert.Equal(t, 0.5, n.Normalize("unknown", 0.5))
	assert.Equal(t, 0.0, n.Normalize("unknown", math.NaN()))
}

func TestNormalizeRecord(t *testing.T) {
	n := New(catalog.Default())
	in := domain.Record{
		EntityID: "agent-1",
		Period:   "2024-03",
		Values:   map[string]float64{"satEP": 0.92, "tmo": 5.2},
	}

	out := n.NormalizeRecord(in)

	assert.InDelta(t, 92.0, out.Values["satEP"], 1e-9)
	assert.InDelta(t, 5.2, out.Values["tmo"], 1e-9)
	assert.Equal(t, 0.92, in.Values["satEP"], "input must not be mutated")
	assert.Equal(t, "agent-1", out.EntityID)
	assert.Equal(t, "2024-03", out.Period)
}

func TestParseCell(t *testing.T) {
	n := New(catalog.Default())

	tests := []struct {
		name     string
		cell     string
		expected float64
		wantErr  bool
	}{
		{name: "plain", cell: "95", expected: 95},
		{name: "fraction", cell: "0.95", expected: 95},
		{name: "percent sign", cell: "95%", expected: 95},
		{name: "small percent stays literal", cell: "0.5%", expected: 0.5},
		{name: "scientific", cell: "9.5E-1", expected: 95},
		{name: "decimal comma", cell: "4,5", expected: 4.5},
		{name: "thousands comma", cell: "1,234.5", expected: 1234.5},
		{name: "whitespace", cell: "  88.2 ", expected: 88.2},
		{name: "empty", cell: "  ", wantErr: true},
		{name: "garbage", cell: "n/a", wantErr: true},
		{name: "nan literal", cell: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.ParseCell("satEP", tt.cell)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

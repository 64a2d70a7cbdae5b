package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Float", float64(42), 42},
		{"Int", 7, 7},
		{"Number", json.Number("13"), 13},
		{"FloatNumber", json.Number("2.0"), 2},
		{"String", " 5 ", 5},
		{"BadString", "five", 0},
		{"Nil", nil, 0},
		{"Bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "orders", ToString("orders"))
	assert.Equal(t, "3", ToString(float64(3)))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
}

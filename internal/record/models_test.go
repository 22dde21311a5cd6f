package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii upper folds", "John Doe", "john doe"},
		{"already lower unchanged", "john doe", "john doe"},
		{"mixed case folds", "JoHn DOE", "john doe"},
		{"digits and punctuation untouched", "O'Neil-2", "o'neil-2"},
		{"empty stays empty", "", ""},
		{"non-ascii bytes untouched", "Żora", "Żora"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

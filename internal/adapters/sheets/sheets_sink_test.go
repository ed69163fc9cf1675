package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendRange(t *testing.T) {
	tests := []struct {
		name      string
		worksheet string
		columns   int
		want      string
	}{
		{
			name:      "eight columns",
			worksheet: "Лист1",
			columns:   8,
			want:      "Лист1!A:H",
		},
		{
			name:      "nine columns",
			worksheet: "Лист1",
			columns:   9,
			want:      "Лист1!A:I",
		},
		{
			name:      "single column",
			worksheet: "Sheet1",
			columns:   1,
			want:      "Sheet1!A:A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appendRange(tt.worksheet, tt.columns))
		})
	}
}

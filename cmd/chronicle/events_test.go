package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

func TestFormatAnchor(t *testing.T) {
	tests := []struct {
		name   string
		anchor entities.Anchor
		want   string
	}{
		{
			name:   "known year",
			anchor: entities.Anchor{Known: true, Year: 1042},
			want:   "year 1042",
		},
		{
			name:   "negative year",
			anchor: entities.Anchor{Known: true, Year: -300},
			want:   "year -300",
		},
		{
			name:   "unknown",
			anchor: entities.Anchor{},
			want:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAnchor(tt.anchor))
		})
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ranch/internal/geom"
)

func TestParseVec(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Vector3
		wantErr bool
	}{
		{"1,0,2", geom.Vec(1, 0, 2), false},
		{" 1.5 , -2 , 3e1 ", geom.Vec(1.5, -2, 30), false},
		{"1,2", geom.Vector3{}, true},
		{"1,2,3,4", geom.Vector3{}, true},
		{"a,b,c", geom.Vector3{}, true},
		{"", geom.Vector3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVec(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, errBadVector)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

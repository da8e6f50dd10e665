package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReachable(t *testing.T) {
	tests := []struct {
		name   string
		output string
		edges  map[string][]string
		want   map[string]bool
	}{
		{
			name:   "linear with dead step",
			output: "S2",
			edges:  map[string][]string{"S1": {}, "S2": {"S1"}, "S3": {}},
			want:   map[string]bool{"S1": true, "S2": true},
		},
		{
			name:   "diamond",
			output: "Out",
			edges: map[string][]string{
				"Src": {}, "Left": {"Src"}, "Right": {"Src"}, "Out": {"Left", "Right"},
			},
			want: map[string]bool{"Src": true, "Left": true, "Right": true, "Out": true},
		},
		{
			name:   "cycle terminates",
			output: "A",
			edges:  map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}, "D": {"A"}},
			want:   map[string]bool{"A": true, "B": true, "C": true},
		},
		{
			name:   "self reference",
			output: "F",
			edges:  map[string][]string{"F": {"F"}},
			want:   map[string]bool{"F": true},
		},
		{
			name:   "output is not a step",
			output: "Missing",
			edges:  map[string][]string{"A": {}},
			want:   map[string]bool{},
		},
		{
			name:   "reference to unknown name ignored",
			output: "A",
			edges:  map[string][]string{"A": {"Ghost"}},
			want:   map[string]bool{"A": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reachable(tt.output, tt.edges))
		})
	}
}

package insights

import (
	"reflect"
	"testing"
)

func TestExtractChartData(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "empty text",
			text: "",
			want: map[string]int{},
		},
		{
			name: "no category mentions",
			text: "A featureless scene with nothing notable.",
			want: map[string]int{},
		},
		{
			name: "counts repeated mentions",
			text: "The image shows Water and more Water near the Forest",
			want: map[string]int{"Water": 2, "Forest": 1},
		},
		{
			name: "case insensitive",
			text: "dense VEGETATION with scattered cloud cover",
			want: map[string]int{"Vegetation": 1, "Cloud": 1},
		},
		{
			name: "whole word only",
			text: "Rapid urbanization near the river",
			want: map[string]int{},
		},
		{
			name: "urban as a word counts",
			text: "Urban sprawl dominates; urban density is high",
			want: map[string]int{"Urban": 2},
		},
		{
			name: "multi word category",
			text: "Patches of bare land next to agriculture",
			want: map[string]int{"Bare land": 1, "Agriculture": 1},
		},
		{
			name: "punctuation boundaries",
			text: "Water, forest, and disaster-affected zones.",
			want: map[string]int{"Water": 1, "Forest": 1, "Disaster": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractChartData(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractChartData(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractChartDataOmitsZeroEntries(t *testing.T) {
	got := ExtractChartData("Water everywhere")
	for cat, n := range got {
		if n == 0 {
			t.Errorf("category %q present with zero count", cat)
		}
	}
	if _, ok := got["Forest"]; ok {
		t.Errorf("unmentioned category should be absent, got %v", got)
	}
}

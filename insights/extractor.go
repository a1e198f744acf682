package insights

import "regexp"

// Categories is the fixed feature vocabulary charted from insight text.
// Order matters only for building patterns; the extracted mapping is
// unordered.
var Categories = []string{
	"Water",
	"Vegetation",
	"Urban",
	"Disaster",
	"Forest",
	"Agriculture",
	"Cloud",
	"Bare land",
}

var categoryPatterns = buildPatterns()

func buildPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(Categories))
	for _, cat := range Categories {
		// whole-word, case-insensitive: "Urbanization" must not count as "Urban"
		patterns[cat] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(cat) + `\b`)
	}
	return patterns
}

// ExtractChartData counts non-overlapping whole-word occurrences of each
// category label in the insight text. Categories with zero matches are
// omitted so downstream charts never render zero-valued entries. Pure and
// deterministic.
func ExtractChartData(insightText string) map[string]int {
	chartData := make(map[string]int)
	if insightText == "" {
		return chartData
	}
	for cat, pattern := range categoryPatterns {
		if n := len(pattern.FindAllStringIndex(insightText, -1)); n > 0 {
			chartData[cat] = n
		}
	}
	return chartData
}

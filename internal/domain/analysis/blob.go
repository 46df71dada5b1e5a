package analysis

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ExtractPreview reads perceived_age and preview_insights out of the LLM
// output. Missing or mistyped fields yield zero values; the blob itself is
// never modified.
func ExtractPreview(data json.RawMessage) (int, []PreviewInsight) {
	if !gjson.ValidBytes(data) {
		return 0, nil
	}
	age := int(gjson.GetBytes(data, "perceived_age").Float())

	var insights []PreviewInsight
	gjson.GetBytes(data, "preview_insights").ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		insights = append(insights, PreviewInsight{
			StarRating:      clampStars(v.Get("star_rating").Int()),
			EmotionalHook:   v.Get("emotional_hook").String(),
			ConversionTease: v.Get("conversion_tease").String(),
			Category:        v.Get("category").String(),
		})
		return true
	})
	return age, insights
}

func clampStars(n int64) int {
	switch {
	case n < 1:
		return 1
	case n > 5:
		return 5
	}
	return int(n)
}

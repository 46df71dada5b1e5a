package ai

import (
	"context"
	"encoding/json"
)

// Face holds the attributes of one detected face. Likelihoods use the
// provider's enum names (VERY_UNLIKELY .. VERY_LIKELY, UNKNOWN).
type Face struct {
	DetectionConfidence float64 `json:"detection_confidence"`
	Joy                 string  `json:"joy_likelihood"`
	Sorrow              string  `json:"sorrow_likelihood"`
	Anger               string  `json:"anger_likelihood"`
	Surprise            string  `json:"surprise_likelihood"`
	UnderExposed        string  `json:"under_exposed_likelihood"`
	Blurred             string  `json:"blurred_likelihood"`
	Headwear            string  `json:"headwear_likelihood"`
}

type FaceDetector interface {
	DetectFaces(ctx context.Context, imageBase64 string) ([]Face, error)
}

// InsightGenerator turns a photo plus face attributes into the wellness
// analysis blob.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, faces []Face, imageBase64, contentType string) (json.RawMessage, error)
}

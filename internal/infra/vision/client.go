// Package vision detects faces with the Google Cloud Vision REST API.
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/bryanwahyu/glowguide/internal/domain/ai"
)

const defaultAttempts = 3

type Client struct {
	svc      *vision.Service
	attempts uint
	delay    time.Duration
}

var _ ai.FaceDetector = (*Client)(nil)

// NewClient authenticates with an API key. Extra options are appended, so
// callers may override the endpoint or HTTP client.
func NewClient(ctx context.Context, apiKey string, attempts uint, opts ...option.ClientOption) (*Client, error) {
	if attempts == 0 {
		attempts = defaultAttempts
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := vision.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &Client{svc: svc, attempts: attempts, delay: 200 * time.Millisecond}, nil
}

// DetectFaces asks for at most one face plus a safe search verdict.
// Transient failures are retried; auth failures are not.
func (c *Client) DetectFaces(ctx context.Context, imageBase64 string) ([]ai.Face, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: imageBase64},
			Features: []*vision.Feature{
				{Type: "FACE_DETECTION", MaxResults: 1},
				{Type: "SAFE_SEARCH_DETECTION", MaxResults: 1},
			},
		}},
	}

	var resp *vision.BatchAnnotateImagesResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = c.svc.Images.Annotate(req).Context(ctx).Do()
			return err
		},
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return nil, fmt.Errorf("vision annotate: %s (code %d)", r.Error.Message, r.Error.Code)
	}

	faces := make([]ai.Face, 0, len(r.FaceAnnotations))
	for _, f := range r.FaceAnnotations {
		faces = append(faces, ai.Face{
			DetectionConfidence: f.DetectionConfidence,
			Joy:                 f.JoyLikelihood,
			Sorrow:              f.SorrowLikelihood,
			Anger:               f.AngerLikelihood,
			Surprise:            f.SurpriseLikelihood,
			UnderExposed:        f.UnderExposedLikelihood,
			Blurred:             f.BlurredLikelihood,
			Headwear:            f.HeadwearLikelihood,
		})
	}
	return faces, nil
}

func retryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: google vision returned %d", ai.ErrProviderAuth, gerr.Code)
		}
		return fmt.Errorf("google vision returned %d: %s", gerr.Code, gerr.Message)
	}
	return fmt.Errorf("google vision: %w", err)
}

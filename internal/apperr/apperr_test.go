package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/glowguide/internal/apperr"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Wrap(apperr.Upstream, cause, "vision failed")

	require.ErrorIs(t, err, apperr.Upstream)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, apperr.NotFound)
	require.Equal(t, "vision failed: connection reset", err.Error())
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperr.New(apperr.Gone, "Analysis has expired"))
	require.Equal(t, apperr.Gone, apperr.KindOf(err))
	require.Equal(t, apperr.Internal, apperr.KindOf(errors.New("plain")))
}

func TestPublic(t *testing.T) {
	msg, details := apperr.Public(apperr.New(apperr.BadRequest, "Image data is required").WithDetails("empty body"))
	require.Equal(t, "Image data is required", msg)
	require.Equal(t, "empty body", details)

	msg, details = apperr.Public(errors.New("pq: password authentication failed"))
	require.Equal(t, "Internal server error", msg)
	require.Empty(t, details)

	msg, _ = apperr.Public(apperr.Wrap(apperr.Forbidden, nil, ""))
	require.Equal(t, "FORBIDDEN", msg)
}

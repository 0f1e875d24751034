package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
)

func TestBuildReviewVerify(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	review, err := buildReview(true, true, "admin", 30, now)

	require.NoError(t, err)
	require.NotNil(t, review.VerifiedAt)
	assert.Equal(t, now, *review.VerifiedAt)
	assert.Equal(t, "admin", review.VerifiedBy)
	require.NotNil(t, review.CooldownUntil)
	assert.Equal(t, now.Add(30*24*time.Hour), *review.CooldownUntil)
}

func TestBuildReviewRequiresCompletion(t *testing.T) {
	_, err := buildReview(true, false, "admin", 30, time.Now())

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestBuildReviewNoCooldown(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, days := range []int{0, -1} {
		review, err := buildReview(true, true, "admin", days, now)

		require.NoError(t, err)
		require.NotNil(t, review.VerifiedAt)
		assert.Nil(t, review.CooldownUntil, "cooldown of %d days must not lock", days)
	}
}

func TestBuildReviewUnverify(t *testing.T) {
	// Clearing verification has no precondition and releases everything,
	// even when the flow is incomplete.
	review, err := buildReview(false, false, "admin", 30, time.Now())

	require.NoError(t, err)
	assert.Nil(t, review.VerifiedAt)
	assert.Empty(t, review.VerifiedBy)
	assert.Nil(t, review.CooldownUntil)
}

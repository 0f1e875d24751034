package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

func entriesFor(steps ...string) []models.EvidenceEntry {
	entries := make([]models.EvidenceEntry, len(steps))
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, step := range steps {
		entries[i] = models.EvidenceEntry{
			Step:      step,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return entries
}

func TestRequiredSteps(t *testing.T) {
	assert.Len(t, RequiredSteps(RoleDriver), 6)
	assert.Len(t, RequiredSteps(RoleGraphic), 4)
	assert.Contains(t, RequiredSteps(RoleDriver), StepOdometerValue)
	assert.NotContains(t, RequiredSteps(RoleGraphic), StepOdometerPhoto)
}

func TestKnownStep(t *testing.T) {
	assert.True(t, KnownStep(RoleDriver, StepOdometerPhoto))
	assert.False(t, KnownStep(RoleGraphic, StepOdometerPhoto))
	assert.True(t, KnownStep(RoleGraphic, StepPhotoLeft))
	// Optional steps are always accepted.
	assert.True(t, KnownStep(RoleDriver, StepNotes))
	assert.True(t, KnownStep(RoleGraphic, StepNotes))
	assert.False(t, KnownStep(RoleDriver, "selfie"))
}

func TestTarget(t *testing.T) {
	assert.Equal(t, TargetDriver, Target(RoleDriver))
	assert.Equal(t, TargetGraphic, Target(RoleGraphic))
}

func TestEvaluateIncomplete(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	entries := entriesFor(
		StepOdometerPhoto, StepOdometerValue,
		StepPhotoFront, StepPhotoBack, StepPhotoLeft,
	)

	status := Evaluate(entries, RequiredSteps(RoleDriver), nil, now)

	assert.False(t, status.Completed)
	assert.Equal(t, []string{StepPhotoRight}, status.PendingSteps)
	assert.Equal(t, 5, status.TotalUploads)
	require.NotNil(t, status.LastUploadAt)
	assert.False(t, status.Locked)
}

func TestEvaluateLastStepCompletes(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	entries := entriesFor(
		StepOdometerPhoto, StepOdometerValue,
		StepPhotoFront, StepPhotoBack, StepPhotoLeft, StepPhotoRight,
	)

	status := Evaluate(entries, RequiredSteps(RoleDriver), nil, now)

	assert.True(t, status.Completed)
	assert.Empty(t, status.PendingSteps)
}

func TestEvaluateDuplicateEntries(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	// A redo of the same step counts as an upload but changes nothing else.
	entries := entriesFor(StepPhotoFront, StepPhotoFront, StepPhotoFront)

	status := Evaluate(entries, RequiredSteps(RoleGraphic), nil, now)

	assert.False(t, status.Completed)
	assert.Equal(t, 3, status.TotalUploads)
	assert.Equal(t, []string{StepPhotoBack, StepPhotoLeft, StepPhotoRight}, status.PendingSteps)
}

func TestEvaluateNoEntries(t *testing.T) {
	status := Evaluate(nil, RequiredSteps(RoleDriver), nil, time.Now())

	assert.False(t, status.Completed)
	assert.Len(t, status.PendingSteps, 6)
	assert.Zero(t, status.TotalUploads)
	assert.Nil(t, status.LastUploadAt)
}

func TestEvaluateEmptyRequiredList(t *testing.T) {
	now := time.Now()

	status := Evaluate(nil, nil, nil, now)
	assert.False(t, status.Completed)

	status = Evaluate(entriesFor(StepNotes), nil, nil, now)
	assert.True(t, status.Completed)
}

func TestEvaluateReviewLock(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	verifiedAt := now.Add(-24 * time.Hour)

	t.Run("locked while cooldown runs", func(t *testing.T) {
		until := now.Add(48 * time.Hour)
		review := &models.FlowReview{VerifiedAt: &verifiedAt, VerifiedBy: "admin", CooldownUntil: &until}

		status := Evaluate(nil, RequiredSteps(RoleDriver), review, now)

		assert.True(t, status.Verified)
		assert.True(t, status.Locked)
		assert.Equal(t, "admin", status.VerifiedBy)
		require.NotNil(t, status.CooldownUntil)
	})

	t.Run("unlocked after cooldown expires", func(t *testing.T) {
		until := now.Add(-time.Hour)
		review := &models.FlowReview{VerifiedAt: &verifiedAt, CooldownUntil: &until}

		status := Evaluate(nil, RequiredSteps(RoleDriver), review, now)

		assert.False(t, status.Locked)
	})

	t.Run("verified without cooldown never locks", func(t *testing.T) {
		review := &models.FlowReview{VerifiedAt: &verifiedAt}

		status := Evaluate(nil, RequiredSteps(RoleDriver), review, now)

		assert.True(t, status.Verified)
		assert.False(t, status.Locked)
		assert.Equal(t, &verifiedAt, status.VerifiedAt)
	})

	t.Run("cleared review carries nothing", func(t *testing.T) {
		status := Evaluate(nil, RequiredSteps(RoleDriver), &models.FlowReview{}, now)

		assert.False(t, status.Verified)
		assert.False(t, status.Locked)
		assert.Nil(t, status.VerifiedAt)
	})
}

func TestEvaluateIsPure(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	entries := entriesFor(StepPhotoFront, StepPhotoBack)
	required := RequiredSteps(RoleGraphic)

	first := Evaluate(entries, required, nil, now)
	second := Evaluate(entries, required, nil, now)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{StepPhotoFront, StepPhotoBack, StepPhotoLeft, StepPhotoRight}, required)
}

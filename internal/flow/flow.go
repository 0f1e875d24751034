// Package flow defines the required evidence steps per role and derives the
// completion/verification/cooldown state of a flow from accumulated evidence.
package flow

import (
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

// Roles submitting evidence.
const (
	RoleDriver  = "driver"
	RoleGraphic = "graphic"
)

// Flow targets keying the persisted review map on the driver record.
const (
	TargetDriver  = "driverFlow"
	TargetGraphic = "graphicFlow"
)

// Step identifiers. The four side photos are shared between both flows.
const (
	StepOdometerPhoto = "odometer_photo"
	StepOdometerValue = "odometer_value"
	StepPhotoFront    = "photo_front"
	StepPhotoBack     = "photo_back"
	StepPhotoLeft     = "photo_left"
	StepPhotoRight    = "photo_right"
	StepNotes         = "notes"
)

var driverSteps = []string{
	StepOdometerPhoto,
	StepOdometerValue,
	StepPhotoFront,
	StepPhotoBack,
	StepPhotoLeft,
	StepPhotoRight,
}

var graphicSteps = []string{
	StepPhotoFront,
	StepPhotoBack,
	StepPhotoLeft,
	StepPhotoRight,
}

// optionalSteps may be submitted but are never required for completion.
var optionalSteps = map[string]bool{
	StepNotes: true,
}

// RequiredSteps returns the fixed required step sequence for a role. The
// returned slice must not be mutated.
func RequiredSteps(role string) []string {
	if role == RoleGraphic {
		return graphicSteps
	}
	return driverSteps
}

// KnownStep reports whether a role may submit the given step at all.
func KnownStep(role, step string) bool {
	if optionalSteps[step] {
		return true
	}
	for _, s := range RequiredSteps(role) {
		if s == step {
			return true
		}
	}
	return false
}

// PhotoStep reports whether a step carries a photographic payload.
func PhotoStep(step string) bool {
	switch step {
	case StepOdometerPhoto, StepPhotoFront, StepPhotoBack, StepPhotoLeft, StepPhotoRight:
		return true
	}
	return false
}

// Target maps a role onto its review-map key.
func Target(role string) string {
	if role == RoleGraphic {
		return TargetGraphic
	}
	return TargetDriver
}

// Evaluate derives the flow status from the evidence entries of one
// (campaign, driver, role) tuple and the stored review for that flow. It is
// pure: no mutation, identical inputs yield identical output for a given now.
//
// Completed means every required step has at least one entry; when the
// required list is empty, any entry at all completes the flow.
func Evaluate(entries []models.EvidenceEntry, required []string, review *models.FlowReview, now time.Time) models.FlowStatus {
	seen := make(map[string]bool, len(entries))
	var last *time.Time
	for i := range entries {
		seen[entries[i].Step] = true
		if last == nil || entries[i].CreatedAt.After(*last) {
			t := entries[i].CreatedAt
			last = &t
		}
	}

	pending := make([]string, 0, len(required))
	for _, step := range required {
		if !seen[step] {
			pending = append(pending, step)
		}
	}

	completed := len(pending) == 0 && len(required) > 0
	if len(required) == 0 {
		completed = len(entries) > 0
	}

	status := models.FlowStatus{
		Completed:    completed,
		PendingSteps: pending,
		TotalUploads: len(entries),
		LastUploadAt: last,
	}
	if review != nil {
		status.Verified = review.VerifiedAt != nil
		status.VerifiedAt = review.VerifiedAt
		status.VerifiedBy = review.VerifiedBy
		status.CooldownUntil = review.CooldownUntil
		status.Locked = review.VerifiedAt != nil &&
			review.CooldownUntil != nil && review.CooldownUntil.After(now)
	}
	return status
}

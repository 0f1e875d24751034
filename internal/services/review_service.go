package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/flow"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReviewService is the admin verification/cooldown manager. Verifying a flow
// stamps who and when and computes the unlock time from the campaign's
// per-role cooldown configuration; unverifying is an immediate release.
type ReviewService struct {
	campaignRepo *repository.CampaignRepository
	driverRepo   *repository.DriverRepository
	evidenceRepo *repository.EvidenceRepository
	rows         *RowService
}

func NewReviewService(
	campaignRepo *repository.CampaignRepository,
	driverRepo *repository.DriverRepository,
	evidenceRepo *repository.EvidenceRepository,
	rows *RowService,
) *ReviewService {
	return &ReviewService{
		campaignRepo: campaignRepo,
		driverRepo:   driverRepo,
		evidenceRepo: evidenceRepo,
		rows:         rows,
	}
}

// SetVerified flips the verified flag of one flow. Verifying requires the
// flow to be complete; unverifying has no precondition and clears the
// verification fields, releasing any cooldown early.
func (s *ReviewService) SetVerified(campaignID, driverID, role string, verified bool, reviewer string) (*models.FlowReview, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: campaign", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	driver, err := s.driverRepo.GetByID(driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if driver, err = campaignScoped(driver, campaignID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	completed := false
	if verified {
		entries, err := s.evidenceRepo.GetByFlow(campaignID, driverID, role)
		if err != nil {
			return nil, fmt.Errorf("failed to load evidence entries: %w", err)
		}
		target := flow.Target(role)
		status := flow.Evaluate(entries, flow.RequiredSteps(role), driver.Review(target), now)
		completed = status.Completed
	}

	review, err := buildReview(verified, completed, reviewer, campaign.CooldownDays(role), now)
	if err != nil {
		return nil, err
	}

	driver.SetReview(flow.Target(role), review)
	s.rows.ApplyCanonicalRaw(driver)
	if err := s.driverRepo.Update(driver); err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}

	logrus.Infof("Flow %s of driver %s set verified=%t by %s", flow.Target(role), driverID, verified, reviewer)
	return review, nil
}

// buildReview computes the persisted review state for a verification toggle.
// Kept free of storage so the precondition and cooldown arithmetic are
// testable in isolation.
func buildReview(verified, completed bool, reviewer string, cooldownDays int, now time.Time) (*models.FlowReview, error) {
	if !verified {
		// Clearing verification needs no precondition and unlocks
		// immediately.
		return &models.FlowReview{}, nil
	}
	if !completed {
		return nil, fmt.Errorf("%w: flow is not complete", apperr.ErrValidation)
	}

	review := &models.FlowReview{
		VerifiedAt: &now,
		VerifiedBy: reviewer,
	}
	if cooldownDays > 0 {
		until := now.Add(time.Duration(cooldownDays) * 24 * time.Hour)
		review.CooldownUntil = &until
	}
	return review, nil
}

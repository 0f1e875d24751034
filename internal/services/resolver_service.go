package services

import (
	"fmt"

	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/normalize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResolverService resolves ambiguous multi-field identities into at most one
// driver. The cascade is a fixed reliability ranking: phone and tax id are
// the least collision-prone fields, plate and email act as disambiguators.
type ResolverService struct {
	driverRepo *repository.DriverRepository
}

func NewResolverService(driverRepo *repository.DriverRepository) *ResolverService {
	return &ResolverService{driverRepo: driverRepo}
}

// Resolve returns at most one driver for the given identity fragments. When
// campaignID is set the cascade runs over that campaign's drivers first and
// falls back to the campaign-independent pool by name+phone, materializing a
// local driver on a pool hit. A nil result with a nil error means no unique
// match; ambiguity is never distinguished from absence.
func (s *ResolverService) Resolve(campaignID string, q models.IdentityQuery) (*models.Driver, error) {
	if q.Empty() {
		return nil, nil
	}

	var candidates []*models.Driver
	var err error
	if campaignID != "" {
		candidates, err = s.driverRepo.GetByCampaignID(campaignID)
	} else {
		candidates, err = s.driverRepo.GetAll()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load driver projection: %w", err)
	}

	if d := resolveAmong(candidates, q); d != nil {
		return d, nil
	}

	if campaignID == "" {
		return nil, nil
	}

	// Secondary projection: the campaign-independent pool, compared by
	// name+phone only. A hit materializes a local driver in this campaign.
	pool, err := s.driverRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load driver pool: %w", err)
	}
	source := matchPool(pool, q)
	if source == nil {
		return nil, nil
	}

	local := materializeDriver(campaignID, source)
	if err := s.driverRepo.Create(local); err != nil {
		return nil, fmt.Errorf("failed to materialize driver from pool: %w", err)
	}
	logrus.Infof("Materialized driver %s in campaign %s from pool record %s", local.ID, campaignID, source.ID)
	return local, nil
}

// MatchCandidate runs the narrowing cascade over an already-loaded candidate
// set. The sheet importer uses it to match rows against a campaign's drivers
// without a round trip per row.
func MatchCandidate(candidates []*models.Driver, q models.IdentityQuery) *models.Driver {
	return resolveAmong(candidates, q)
}

// resolveAmong runs the narrowing cascade over an in-memory candidate set.
// Stages run in fixed order; a later stage is only tried when the previous
// one matched nothing. A stage that matches several candidates is narrowed
// by name and then tax id; if that still leaves more than one, resolution
// fails outright rather than guessing.
func resolveAmong(candidates []*models.Driver, q models.IdentityQuery) *models.Driver {
	stages := []struct {
		enabled bool
		match   func(*models.Driver) bool
	}{
		{q.Phone != "", func(d *models.Driver) bool { return normalize.SamePhone(d.Phone, q.Phone) }},
		{normalize.Digits(q.TaxID) != "", func(d *models.Driver) bool {
			return d.TaxIDDigits != "" && d.TaxIDDigits == normalize.Digits(q.TaxID)
		}},
		{normalize.Plate(q.Plate) != "", func(d *models.Driver) bool {
			return d.PlateKey != "" && d.PlateKey == normalize.Plate(q.Plate)
		}},
		{normalize.Email(q.Email) != "", func(d *models.Driver) bool {
			return d.EmailKey != "" && d.EmailKey == normalize.Email(q.Email)
		}},
		{normalize.Fold(q.Name) != "", func(d *models.Driver) bool {
			return d.NameKey != "" && d.NameKey == normalize.Fold(q.Name)
		}},
	}

	for _, stage := range stages {
		if !stage.enabled {
			continue
		}
		var matched []*models.Driver
		for _, d := range candidates {
			if stage.match(d) {
				matched = append(matched, d)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if len(matched) == 1 {
			return matched[0]
		}
		return narrow(matched, q)
	}
	return nil
}

// narrow disambiguates a multi-candidate set by exact normalized name, then
// by exact tax id. Narrowing only shrinks the set when it leaves at least
// one candidate standing.
func narrow(candidates []*models.Driver, q models.IdentityQuery) *models.Driver {
	set := candidates

	if key := normalize.Fold(q.Name); key != "" {
		var sub []*models.Driver
		for _, d := range set {
			if d.NameKey == key {
				sub = append(sub, d)
			}
		}
		if len(sub) > 0 {
			set = sub
		}
	}
	if len(set) == 1 {
		return set[0]
	}

	if digits := normalize.Digits(q.TaxID); digits != "" {
		var sub []*models.Driver
		for _, d := range set {
			if d.TaxIDDigits == digits {
				sub = append(sub, d)
			}
		}
		if len(sub) > 0 {
			set = sub
		}
	}
	if len(set) == 1 {
		return set[0]
	}
	return nil
}

// matchPool compares the query against the campaign-independent pool using
// name+phone only, the two fields the aggregate projection is keyed by.
func matchPool(pool []*models.Driver, q models.IdentityQuery) *models.Driver {
	nameKey := normalize.Fold(q.Name)
	if nameKey == "" || q.Phone == "" {
		return nil
	}
	var matched []*models.Driver
	for _, d := range pool {
		if d.NameKey == nameKey && normalize.SamePhone(d.Phone, q.Phone) {
			matched = append(matched, d)
		}
	}
	if len(matched) != 1 {
		return nil
	}
	return matched[0]
}

// materializeDriver clones a pool record into a campaign-local driver. The
// new record gets its own id; the raw row travels along so the canonical row
// starts from the same column set.
func materializeDriver(campaignID string, source *models.Driver) *models.Driver {
	rawRow := make(map[string]string, len(source.RawRow))
	for k, v := range source.RawRow {
		rawRow[k] = v
	}
	return &models.Driver{
		ID:          uuid.New().String(),
		CampaignID:  campaignID,
		Name:        source.Name,
		NameKey:     source.NameKey,
		Phone:       source.Phone,
		PhoneDigits: source.PhoneDigits,
		TaxID:       source.TaxID,
		TaxIDDigits: source.TaxIDDigits,
		Plate:       source.Plate,
		PlateKey:    source.PlateKey,
		Email:       source.Email,
		EmailKey:    source.EmailKey,
		PaymentKey:  source.PaymentKey,
		RawRow:      rawRow,
	}
}

// ApplyIdentity completes empty identity fields on a driver from the login
// query (contact fields are completed at first login) and refreshes the
// normalized keys. Returns true when anything changed.
func ApplyIdentity(d *models.Driver, q models.IdentityQuery) bool {
	changed := false
	if d.Name == "" && q.Name != "" {
		d.Name = q.Name
		changed = true
	}
	if d.Phone == "" && q.Phone != "" {
		d.Phone = q.Phone
		changed = true
	}
	if d.TaxID == "" && q.TaxID != "" {
		d.TaxID = q.TaxID
		changed = true
	}
	if d.Plate == "" && q.Plate != "" {
		d.Plate = q.Plate
		changed = true
	}
	if d.Email == "" && q.Email != "" {
		d.Email = q.Email
		changed = true
	}
	if changed {
		RefreshKeys(d)
	}
	return changed
}

// RefreshKeys recomputes the normalized comparison keys from the raw fields.
func RefreshKeys(d *models.Driver) {
	d.NameKey = normalize.Fold(d.Name)
	d.PhoneDigits = normalize.Digits(d.Phone)
	d.TaxIDDigits = normalize.Digits(d.TaxID)
	d.PlateKey = normalize.Plate(d.Plate)
	d.EmailKey = normalize.Email(d.Email)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

func driverFixture(id, name, phone, taxID, plate, email string) *models.Driver {
	d := &models.Driver{
		ID:    id,
		Name:  name,
		Phone: phone,
		TaxID: taxID,
		Plate: plate,
		Email: email,
	}
	RefreshKeys(d)
	return d
}

func TestMatchCandidatePhoneStage(t *testing.T) {
	candidates := []*models.Driver{
		driverFixture("d1", "José da Silva", "5511991335320", "", "", ""),
		driverFixture("d2", "Maria de Souza", "5511988887777", "", "", ""),
	}

	t.Run("unique phone match", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{Phone: "11991335320"})
		require.NotNil(t, d)
		assert.Equal(t, "d1", d.ID)
	})

	t.Run("formatted phone still matches", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{Phone: "+55 (11) 99133-5320"})
		require.NotNil(t, d)
		assert.Equal(t, "d1", d.ID)
	})

	t.Run("no phone match falls through to later stages", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{
			Phone: "5511900000000",
			Name:  "Maria de Souza",
		})
		require.NotNil(t, d)
		assert.Equal(t, "d2", d.ID)
	})
}

func TestMatchCandidateStageOrder(t *testing.T) {
	// Two drivers share a name; only tax id tells them apart.
	candidates := []*models.Driver{
		driverFixture("d1", "José da Silva", "5511991335320", "123.456.789-09", "ABC1D23", ""),
		driverFixture("d2", "José da Silva", "5511988887777", "987.654.321-00", "XYZ9K88", ""),
	}

	t.Run("tax id before plate", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{
			TaxID: "98765432100",
			Plate: "ABC1D23", // would pick d1, but tax id stage runs first
		})
		require.NotNil(t, d)
		assert.Equal(t, "d2", d.ID)
	})

	t.Run("plate stage", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{Plate: "abc-1d23"})
		require.NotNil(t, d)
		assert.Equal(t, "d1", d.ID)
	})

	t.Run("name stage is last and ambiguous here", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{Name: "jose da silva"})
		assert.Nil(t, d)
	})
}

func TestMatchCandidateNarrowing(t *testing.T) {
	// Family members sharing a phone line.
	candidates := []*models.Driver{
		driverFixture("d1", "José da Silva", "5511991335320", "123.456.789-09", "", ""),
		driverFixture("d2", "Maria da Silva", "5511991335320", "987.654.321-00", "", ""),
	}

	t.Run("narrow by name", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{
			Phone: "5511991335320",
			Name:  "maria da silva",
		})
		require.NotNil(t, d)
		assert.Equal(t, "d2", d.ID)
	})

	t.Run("narrow by tax id when names also collide", func(t *testing.T) {
		twins := []*models.Driver{
			driverFixture("d1", "José da Silva", "5511991335320", "123.456.789-09", "", ""),
			driverFixture("d2", "José da Silva", "5511991335320", "987.654.321-00", "", ""),
		}
		d := MatchCandidate(twins, models.IdentityQuery{
			Phone: "5511991335320",
			Name:  "José da Silva",
			TaxID: "123.456.789-09",
		})
		require.NotNil(t, d)
		assert.Equal(t, "d1", d.ID)
	})

	t.Run("still ambiguous after narrowing", func(t *testing.T) {
		d := MatchCandidate(candidates, models.IdentityQuery{Phone: "5511991335320"})
		assert.Nil(t, d)
	})

	t.Run("narrowing never widens to zero", func(t *testing.T) {
		// A name matching neither candidate leaves the set unchanged, so the
		// phone ambiguity stands.
		d := MatchCandidate(candidates, models.IdentityQuery{
			Phone: "5511991335320",
			Name:  "Outro Nome",
		})
		assert.Nil(t, d)
	})
}

func TestMatchCandidateEmptyQuery(t *testing.T) {
	candidates := []*models.Driver{
		driverFixture("d1", "José da Silva", "5511991335320", "", "", ""),
	}
	assert.Nil(t, MatchCandidate(candidates, models.IdentityQuery{}))
	assert.Nil(t, MatchCandidate(nil, models.IdentityQuery{Name: "José da Silva"}))
}

func TestMatchPool(t *testing.T) {
	pool := []*models.Driver{
		driverFixture("p1", "José da Silva", "5511991335320", "", "", ""),
		driverFixture("p2", "Maria de Souza", "5511988887777", "", "", ""),
	}

	t.Run("name and phone both required", func(t *testing.T) {
		assert.Nil(t, matchPool(pool, models.IdentityQuery{Name: "José da Silva"}))
		assert.Nil(t, matchPool(pool, models.IdentityQuery{Phone: "5511991335320"}))
	})

	t.Run("unique hit", func(t *testing.T) {
		d := matchPool(pool, models.IdentityQuery{Name: "jose da silva", Phone: "11991335320"})
		require.NotNil(t, d)
		assert.Equal(t, "p1", d.ID)
	})

	t.Run("duplicate pool records match nothing", func(t *testing.T) {
		dup := append(pool, driverFixture("p3", "José da Silva", "5511991335320", "", "", ""))
		assert.Nil(t, matchPool(dup, models.IdentityQuery{Name: "José da Silva", Phone: "5511991335320"}))
	})
}

func TestMaterializeDriver(t *testing.T) {
	source := driverFixture("p1", "José da Silva", "5511991335320", "123.456.789-09", "ABC1D23", "jose@example.com")
	source.PaymentKey = "jose@example.com"
	source.RawRow = map[string]string{"NOME": "José da Silva"}

	local := materializeDriver("c1", source)

	assert.NotEmpty(t, local.ID)
	assert.NotEqual(t, source.ID, local.ID)
	assert.Equal(t, "c1", local.CampaignID)
	assert.Equal(t, source.Name, local.Name)
	assert.Equal(t, source.NameKey, local.NameKey)
	assert.Equal(t, source.TaxIDDigits, local.TaxIDDigits)
	assert.Equal(t, source.PaymentKey, local.PaymentKey)

	// The raw row is copied, not shared.
	local.RawRow["NOME"] = "Outro"
	assert.Equal(t, "José da Silva", source.RawRow["NOME"])
}

func TestApplyIdentity(t *testing.T) {
	t.Run("fills empty fields only", func(t *testing.T) {
		d := driverFixture("d1", "José da Silva", "", "", "", "")
		changed := ApplyIdentity(d, models.IdentityQuery{
			Name:  "Outro Nome",
			Phone: "5511991335320",
			Plate: "abc-1d23",
		})

		assert.True(t, changed)
		assert.Equal(t, "José da Silva", d.Name, "existing name must not be overwritten")
		assert.Equal(t, "5511991335320", d.Phone)
		assert.Equal(t, "ABC1D23", d.PlateKey, "keys refreshed after fill")
	})

	t.Run("no-op when nothing to fill", func(t *testing.T) {
		d := driverFixture("d1", "José da Silva", "5511991335320", "123.456.789-09", "ABC1D23", "jose@example.com")
		changed := ApplyIdentity(d, models.IdentityQuery{Name: "Outro", Phone: "999"})
		assert.False(t, changed)
	})
}

func TestRefreshKeys(t *testing.T) {
	d := &models.Driver{
		Name:  "José da Silva",
		Phone: "+55 (11) 99133-5320",
		TaxID: "123.456.789-09",
		Plate: "abc-1d23",
		Email: " Jose@Example.COM ",
	}
	RefreshKeys(d)

	assert.Equal(t, "jose da silva", d.NameKey)
	assert.Equal(t, "5511991335320", d.PhoneDigits)
	assert.Equal(t, "12345678909", d.TaxIDDigits)
	assert.Equal(t, "ABC1D23", d.PlateKey)
	assert.Equal(t, "jose@example.com", d.EmailKey)
}

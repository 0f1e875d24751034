package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

func TestCampaignScoped(t *testing.T) {
	driver := &models.Driver{ID: "d1", CampaignID: "c1"}

	t.Run("own campaign passes through", func(t *testing.T) {
		got, err := campaignScoped(driver, "c1")
		require.NoError(t, err)
		assert.Same(t, driver, got)
	})

	t.Run("foreign campaign is a generic not-found", func(t *testing.T) {
		got, err := campaignScoped(driver, "c2")
		assert.Nil(t, got)
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))
		// Indistinguishable from a missing id.
		assert.Equal(t, "not found: driver", err.Error())
	})
}

package rules

import (
	"testing"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighbors(t *testing.T) {
	top := league("Bezirksoberliga", 1, models.LeagueTopTier)
	middle := league("Kreisoberliga", 2, models.LeagueNormal)
	pistol := league("Pistole", 3, models.LeagueExemptOpenClass)
	bottom := league("Kreisklasse", 4, models.LeagueBottomTier)
	leagues := []models.LeagueModel{bottom, pistol, top, middle}

	higher, lower := Neighbors(leagues, middle.LeagueId)
	require.NotNil(t, higher)
	require.NotNil(t, lower)
	assert.Equal(t, top.LeagueId, higher.LeagueId)
	assert.Equal(t, bottom.LeagueId, lower.LeagueId)

	higher, lower = Neighbors(leagues, top.LeagueId)
	assert.Nil(t, higher)
	require.NotNil(t, lower)
	assert.Equal(t, middle.LeagueId, lower.LeagueId)

	higher, lower = Neighbors(leagues, bottom.LeagueId)
	require.NotNil(t, higher)
	assert.Equal(t, middle.LeagueId, higher.LeagueId)
	assert.Nil(t, lower)

	higher, lower = Neighbors(leagues, pistol.LeagueId)
	assert.Nil(t, higher)
	assert.Nil(t, lower)
}

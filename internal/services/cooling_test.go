package services

import (
	"testing"

	"aquagrid/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoolingTable_Profiles(t *testing.T) {
	standard, err := NewCoolingTable(CoolingProfileStandard)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, standard[models.CoolingAirCooled])
	assert.Equal(t, 2500.0, standard[models.CoolingHybrid])
	assert.Equal(t, 5000.0, standard[models.CoolingEvaporative])

	waterless, err := NewCoolingTable(CoolingProfileWaterlessAir)
	require.NoError(t, err)
	assert.Equal(t, 0.0, waterless[models.CoolingAirCooled])
	assert.Equal(t, 2500.0, waterless[models.CoolingHybrid])
	assert.Equal(t, 5000.0, waterless[models.CoolingEvaporative])

	_, err = NewCoolingTable("immersion")
	assert.Error(t, err)
}

func TestCoolingTable_DailyWaterIsLinearInMW(t *testing.T) {
	table, err := NewCoolingTable(CoolingProfileStandard)
	require.NoError(t, err)

	for _, ct := range models.CoolingTypes {
		one, ok := table.DailyWaterGPD(50, ct)
		require.True(t, ok)
		two, ok := table.DailyWaterGPD(100, ct)
		require.True(t, ok)
		assert.InDelta(t, 2*one, two, 1e-9, ct)
	}

	_, ok := table.DailyWaterGPD(10, models.CoolingType("immersion"))
	assert.False(t, ok)
}

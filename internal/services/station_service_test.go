package services

import (
	"testing"

	"dts_backend/internal/models"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStation(t *testing.T) {
	t.Parallel()

	stationRepo := newFakeStationRepo()
	service := NewStationService(stationRepo)

	// Без указания площадок станция получает одну
	station, err := service.CreateStation(&dto.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)
	assert.Equal(t, 1, station.NumGrounds)

	// Имя станции уникально
	_, err = service.CreateStation(&dto.CreateStationRequest{Name: "Main", NumGrounds: 3})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestUpdateStation(t *testing.T) {
	t.Parallel()

	stationRepo := newFakeStationRepo()
	service := NewStationService(stationRepo)
	station := stationRepo.addStation(&models.Station{Name: "Main", NumGrounds: 2})

	updated, err := service.UpdateStation(station.ID, &dto.CreateStationRequest{
		Name: "Main Renamed", Location: "Center", NumGrounds: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Renamed", updated.Name)
	assert.Equal(t, 4, updated.NumGrounds)

	// Нулевое количество площадок не затирает текущее
	updated, err = service.UpdateStation(station.ID, &dto.CreateStationRequest{Name: "Main Renamed"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.NumGrounds)

	_, err = service.UpdateStation("missing", &dto.CreateStationRequest{Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrStationNotFound)
}

func TestGetAndListStations(t *testing.T) {
	t.Parallel()

	stationRepo := newFakeStationRepo()
	service := NewStationService(stationRepo)
	station := stationRepo.addStation(&models.Station{Name: "Main", NumGrounds: 1})
	stationRepo.addStation(&models.Station{Name: "North", NumGrounds: 2})

	got, err := service.GetStation(station.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)

	all, err := service.ListStations()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.GetStation("missing")
	assert.ErrorIs(t, err, apperrors.ErrStationNotFound)
}

package services

import (
	"dts_backend/internal/models"
	"dts_backend/internal/repositories"
	"dts_backend/internal/services/dto"
	"dts_backend/pkg/apperrors"
)

type StationService interface {
	GetStation(stationID string) (*dto.StationResponse, error)
	ListStations() ([]dto.StationResponse, error)
	CreateStation(req *dto.CreateStationRequest) (*dto.StationResponse, error)
	UpdateStation(stationID string, req *dto.CreateStationRequest) (*dto.StationResponse, error)
}

type StationServiceImpl struct {
	stationRepo repositories.StationRepository
}

func NewStationService(stationRepo repositories.StationRepository) StationService {
	return &StationServiceImpl{stationRepo: stationRepo}
}

func (s *StationServiceImpl) GetStation(stationID string) (*dto.StationResponse, error) {
	station, err := s.stationRepo.FindByID(stationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return buildStationResponse(station), nil
}

func (s *StationServiceImpl) ListStations() ([]dto.StationResponse, error) {
	stations, err := s.stationRepo.List()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	responses := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		responses = append(responses, *buildStationResponse(&stations[i]))
	}
	return responses, nil
}

func (s *StationServiceImpl) CreateStation(req *dto.CreateStationRequest) (*dto.StationResponse, error) {
	if _, err := s.stationRepo.FindByName(req.Name); err == nil {
		return nil, apperrors.ErrConflict(nil, "station", "Station with this name already exists")
	} else if !apperrors.Is(err, repositories.ErrStationNotFound) {
		return nil, apperrors.InternalError(err)
	}

	numGrounds := req.NumGrounds
	if numGrounds <= 0 {
		numGrounds = 1
	}

	station := &models.Station{
		Name:       req.Name,
		Location:   req.Location,
		NumGrounds: numGrounds,
	}
	if err := s.stationRepo.Create(station); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildStationResponse(station), nil
}

func (s *StationServiceImpl) UpdateStation(stationID string, req *dto.CreateStationRequest) (*dto.StationResponse, error) {
	station, err := s.stationRepo.FindByID(stationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStationNotFound) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	station.Name = req.Name
	station.Location = req.Location
	if req.NumGrounds > 0 {
		station.NumGrounds = req.NumGrounds
	}
	if err := s.stationRepo.Update(station); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildStationResponse(station), nil
}

func buildStationResponse(station *models.Station) *dto.StationResponse {
	return &dto.StationResponse{
		ID:         station.ID,
		Name:       station.Name,
		Location:   station.Location,
		NumGrounds: station.NumGrounds,
	}
}

package repositories

import (
	"errors"

	"dts_backend/internal/models"

	"gorm.io/gorm"
)

var ErrStationNotFound = errors.New("station not found")

// StationRepository - справочник станций: сидится при инициализации,
// после этого почти не мутирует.
type StationRepository interface {
	FindByID(id string) (*models.Station, error)
	FindByName(name string) (*models.Station, error)
	List() ([]models.Station, error)
	Create(station *models.Station) error
	Update(station *models.Station) error
}

type StationRepositoryImpl struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) StationRepository {
	return &StationRepositoryImpl{db: db}
}

func (r *StationRepositoryImpl) FindByID(id string) (*models.Station, error) {
	var station models.Station
	err := r.db.First(&station, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepositoryImpl) FindByName(name string) (*models.Station, error) {
	var station models.Station
	err := r.db.First(&station, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepositoryImpl) List() ([]models.Station, error) {
	var stations []models.Station
	err := r.db.Order("name").Find(&stations).Error
	return stations, err
}

func (r *StationRepositoryImpl) Create(station *models.Station) error {
	return r.db.Create(station).Error
}

func (r *StationRepositoryImpl) Update(station *models.Station) error {
	return r.db.Save(station).Error
}

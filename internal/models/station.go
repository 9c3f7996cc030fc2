package models

// Station - физическая экзаменационная станция.
// NumGrounds задает вместимость одного слота (площадки работают параллельно).
type Station struct {
	BaseModel
	Name       string `gorm:"type:varchar(100);not null"`
	Location   string
	NumGrounds int `gorm:"not null;default:1"`
}

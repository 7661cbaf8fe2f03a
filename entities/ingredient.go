package entities

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"type:varchar(128);index;not null" json:"name"`
	MeasurementUnit string `gorm:"type:varchar(64);not null" json:"measurement_unit"`
}

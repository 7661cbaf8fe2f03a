package entities

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(32);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(32);uniqueIndex;not null" json:"slug"`
}

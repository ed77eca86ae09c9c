package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account known to the service. Credentials live in the external
// identity provider; only the subject claim is stored here.
type User struct {
	gorm.Model
	Subject   string     `gorm:"uniqueIndex;size:128"`
	Carousels []Carousel `gorm:"constraint:OnDelete:CASCADE"`
}

// Carousel is one saved carousel. Document is the full point-in-time
// snapshot (slides, caption, global style) serialized as JSONB.
type Carousel struct {
	gorm.Model
	Title           string         `gorm:"size:255"`
	Document        datatypes.JSON `gorm:"type:jsonb"`
	UserID          uint           `gorm:"index"`
	User            User           `gorm:"constraint:OnDelete:CASCADE"`
	ArchiveURL      string         `gorm:"size:512"`
	PreviewImageURL string         `gorm:"size:512"`
	Status          string         `gorm:"size:32"`
}

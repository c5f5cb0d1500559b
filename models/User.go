package models

import (
	"gorm.io/gorm"
)

// User is the slim identity record the booking core needs. Registration,
// login and password flows live with the external auth provider; this server
// only reads identity and role out of verified access tokens.
type User struct {
	gorm.Model
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email" gorm:"uniqueIndex"`
	AvatarURL  string     `json:"avatarURL"`
	Role       string     `json:"role" gorm:"type:varchar(20);default:user;index"` // user, host, admin, super_admin
	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:HostID;references:ID"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser   = "USER"
	RoleLounge = "LOUNGE"
	RoleAdmin  = "ADMIN"
)

// User represents any account in the system; Role decides what it can do
type User struct {
	gorm.Model
	Name        string    `json:"name"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string    `json:"phone"`
	Password    string    `json:"-"`
	Role        string    `gorm:"default:USER" json:"role"`
	CampusID    *uint     `json:"campus_id"`
	Campus      *Campus   `json:"campus,omitempty" gorm:"foreignKey:CampusID"`
	IsBlocked   bool      `json:"is_blocked"`
	IsVerified  bool      `json:"is_verified" gorm:"default:false"`
	FCMToken    string    `json:"-"`
	GoogleID    string    `gorm:"default:null" json:"-"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// University groups campuses
type University struct {
	gorm.Model
	Name     string   `gorm:"uniqueIndex;not null" json:"name"`
	City     string   `json:"city"`
	Campuses []Campus `json:"campuses,omitempty" gorm:"foreignKey:UniversityID"`
}

// Campus is a physical location lounges operate on
type Campus struct {
	gorm.Model
	Name         string     `json:"name"`
	UniversityID uint       `json:"university_id"`
	University   University `json:"university,omitempty" gorm:"foreignKey:UniversityID"`
	Address      string     `json:"address"`
}

// Lounge is a food vendor run by a LOUNGE-role user
type Lounge struct {
	gorm.Model
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	CampusID    uint   `json:"campus_id"`
	Campus      Campus `json:"campus,omitempty" gorm:"foreignKey:CampusID"`
	OwnerID     uint   `json:"owner_id"`
	Owner       User   `json:"-" gorm:"foreignKey:OwnerID"`
	Opening     string `json:"opening"`
	Closing     string `json:"closing"`
	IsOpen      bool   `json:"is_open" gorm:"default:true"`
	Foods       []Food `json:"foods,omitempty" gorm:"foreignKey:LoungeID"`
}

// Food is a catalog item on a lounge's menu. EstimatedTime is the
// preparation time in minutes.
type Food struct {
	gorm.Model
	LoungeID      uint    `json:"lounge_id"`
	Lounge        Lounge  `json:"-" gorm:"foreignKey:LoungeID"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	IsAvailable   bool    `json:"is_available" gorm:"default:true"`
	EstimatedTime int     `json:"estimated_time" gorm:"default:15"`
}

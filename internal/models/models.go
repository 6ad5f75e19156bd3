package models

import (
	"time"
)

// User is a registered account. Password holds the bcrypt hash and is
// never serialized. EmailConfirmationCode is the signed token mailed
// out at signup; the unique index is what rejects a colliding code.
type User struct {
	Base
	Email                 string   `gorm:"uniqueIndex;not null" json:"email" validate:"required,email,max=255"`
	Password              string   `gorm:"not null" json:"-"`
	FirstName             string   `json:"firstName" validate:"max=255"`
	LastName              string   `json:"lastName" validate:"max=255"`
	Avatar                string   `json:"avatar" validate:"omitempty,url"`
	PhoneNumber           string   `json:"phoneNumber" validate:"omitempty"`
	IsVerified            bool     `gorm:"not null;default:false" json:"isVerified"`
	EmailConfirmationCode string   `gorm:"uniqueIndex;not null" json:"-"`
	Clients               []Client `gorm:"foreignKey:UserID" json:"clients,omitempty"`
}

// Client belongs to exactly one User. The FK is non-null; a client
// never outlives its owning account.
type Client struct {
	Base
	FirstName   string `gorm:"not null" json:"firstName" validate:"required,max=255"`
	LastName    string `gorm:"not null" json:"lastName" validate:"required,max=255"`
	Website     string `gorm:"not null" json:"website" validate:"required,max=255"`
	Avatar      string `json:"avatar" validate:"omitempty"`
	Description string `json:"description" validate:"omitempty"`
	UserID      string `gorm:"type:uuid;not null" json:"userId" validate:"required,uuid"`
	User        *User  `json:"user,omitempty"`
}

type Campaign struct {
	Base
	Text         string         `gorm:"not null" json:"text" validate:"required,max=255"`
	ClientID     *string        `gorm:"type:uuid" json:"clientId" validate:"omitempty,uuid"`
	Client       *Client        `json:"client,omitempty"`
	Status       CampaignStatus `gorm:"not null;default:'DRAFT'" json:"status" validate:"omitempty,oneof=DRAFT SCHEDULED SENT"`
	ScheduledFor time.Time      `json:"scheduledFor" validate:"omitempty"`
}

type PasswordReset struct {
	Base
	UserID    string    `gorm:"type:uuid;not null" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Code      string    `gorm:"not null" json:"code"`
	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginAudit records one successful login: which account, from where,
// with what client software.
type LoginAudit struct {
	Base
	UserID     string `gorm:"type:uuid;not null" json:"userId"`
	User       *User  `json:"user,omitempty"`
	SessionID  string `gorm:"not null" json:"sessionId"`
	IPAddress  string `json:"ipAddress"`
	UserAgent  string `json:"userAgent"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"deviceType"`
}

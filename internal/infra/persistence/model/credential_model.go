package model

import (
	"time"

	"questlink/internal/domain/entity"
)

// CredentialModel mirrors the 'credentials' table. The device holds at most
// one row (the singleton key), overwritten on re-login.
type CredentialModel struct {
	Key      int    `gorm:"primaryKey"`
	Token    string `gorm:"type:text;not null"`
	IssuedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "credentials"
}

// UserProfileModel mirrors the 'user_profiles' table, one row paired with the credential.
type UserProfileModel struct {
	Key              int    `gorm:"primaryKey"`
	UserID           string `gorm:"type:varchar(64);not null"`
	DisplayName      string `gorm:"type:varchar(255)"`
	Email            string `gorm:"type:varchar(255)"`
	Role             string `gorm:"type:varchar(20);not null"`
	AccountCreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserProfileModel) TableName() string {
	return "user_profiles"
}

// SingletonKey is the fixed primary key for both single-row tables.
const SingletonKey = 1

// FromCredentialDomain maps a domain credential to its row.
func FromCredentialDomain(cred entity.Credential) *CredentialModel {
	return &CredentialModel{
		Key:      SingletonKey,
		Token:    cred.Token,
		IssuedAt: cred.IssuedAt,
	}
}

// ToCredentialDomain maps a row back to the domain credential.
func (m *CredentialModel) ToCredentialDomain() entity.Credential {
	return entity.Credential{
		Token:    m.Token,
		IssuedAt: m.IssuedAt,
	}
}

// FromProfileDomain maps a domain profile to its row.
func FromProfileDomain(profile entity.UserProfile) *UserProfileModel {
	return &UserProfileModel{
		Key:              SingletonKey,
		UserID:           profile.ID,
		DisplayName:      profile.DisplayName,
		Email:            profile.Email,
		Role:             string(profile.Role),
		AccountCreatedAt: profile.CreatedAt,
	}
}

// ToProfileDomain maps a row back to the domain profile.
func (m *UserProfileModel) ToProfileDomain() entity.UserProfile {
	return entity.UserProfile{
		ID:          m.UserID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        entity.Role(m.Role),
		CreatedAt:   m.AccountCreatedAt,
	}
}

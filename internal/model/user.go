package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type SocialProvider string

const (
	ProviderGoogle   SocialProvider = "google"
	ProviderKakao    SocialProvider = "kakao"
	ProviderFacebook SocialProvider = "facebook"
)

func (p SocialProvider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderFacebook:
		return true
	}
	return false
}

// User represents an authenticated user in the system.
// A password-based account has a Password hash, a social account has SocialProvider+SocialID.
type User struct {
	BaseModel
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string          `gorm:"type:varchar(255)" json:"-"` // Hidden from JSON
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Role           Role            `gorm:"type:varchar(20);not null;default:customer" json:"role"`
	Address        string          `gorm:"type:text" json:"address,omitempty"`
	SocialProvider *SocialProvider `gorm:"type:varchar(20);uniqueIndex:idx_users_social_identity" json:"socialProvider,omitempty"`
	SocialID       *string         `gorm:"type:varchar(255);uniqueIndex:idx_users_social_identity" json:"socialId,omitempty"`
	ProfileImage   string          `gorm:"type:text" json:"profileImage,omitempty"`
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash.
// Social-only accounts never match.
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) HasPassword() bool {
	return u.Password != ""
}

func (u *User) IsSocial() bool {
	return u.SocialProvider != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           Role            `json:"role"`
	Address        string          `json:"address,omitempty"`
	ProfileImage   string          `json:"profileImage,omitempty"`
	SocialProvider *SocialProvider `json:"socialProvider,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		Address:        u.Address,
		ProfileImage:   u.ProfileImage,
		SocialProvider: u.SocialProvider,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserSummary is the short identity returned with a login token
type UserSummary struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
	}
}

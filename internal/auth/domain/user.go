package domain

import "strings"

// MinCredentialLength is the minimum trimmed length of username and password.
const MinCredentialLength = 3

// ErrMsgCredentialsTooShort is the single message recorded on a rejected login or registration.
const ErrMsgCredentialsTooShort = "Username dan password minimal 3 karakter."

// User is the signed-in shopper.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	AvatarImage string `json:"avatarImage,omitempty"` // inline image data, stored as-is
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// ProfileUpdate carries the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	AvatarImage *string `json:"avatarImage,omitempty"`
}

// Apply merges the update into a copy of u. Username never changes.
func (p ProfileUpdate) Apply(u User) User {
	if p.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*p.DisplayName)
		if u.DisplayName == "" {
			u.DisplayName = u.Username
		}
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Address != nil {
		u.Address = strings.TrimSpace(*p.Address)
	}
	if p.AvatarImage != nil {
		u.AvatarImage = *p.AvatarImage
	}
	return u
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.DisplayName == nil && p.Email == nil && p.Address == nil && p.AvatarImage == nil
}

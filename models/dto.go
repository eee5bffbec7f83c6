package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
}

type SignUpIn struct {
	ProfileIn
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

type ProfileIn struct {
	Name      string `json:"name" validate:"required"`
	UTMSource string `json:"utm_source"`
}

type RefreshTokenIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UserMeOut struct {
	Id                   string       `json:"id"`
	Name                 string       `json:"name"`
	Email                string       `json:"email"`
	AvatarURL            string       `json:"avatar_url"`
	Subscription         *string      `json:"subscription"`
	ReceiveNotifications bool         `json:"receive_notifications"`
	FullBodyAvatarSet    bool         `json:"full_body_avatar_set"`
	FullBodyAvatarUrl    *string      `json:"user_fullbody_avatar_url"`
	StyleProfile         StyleProfile `json:"style_profile"`
}

type StyleProfileIn struct {
	Gender          *string  `json:"gender" validate:"omitempty,oneof=female male non-binary"`
	SkinTone        *string  `json:"skin_tone" validate:"omitempty,max=50"`
	BodyType        *string  `json:"body_type" validate:"omitempty,max=50"`
	FitPreference   *string  `json:"fit_preference" validate:"omitempty,max=50"`
	PreferredStyles []string `json:"preferred_styles" validate:"omitempty,max=10,dive,max=50"`
}

type UserPushIn struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications bool `json:"receive_notifications"`
}

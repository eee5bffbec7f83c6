package models

import (
	"time"

	"github.com/lib/pq"
)

// StyleProfile is embedded into UserAccount and feeds the outfit
// compatibility checks. All fields are optional; empty means the user
// skipped that onboarding step.
type StyleProfile struct {
	Gender          string         `json:"gender"`
	SkinTone        string         `json:"skin_tone"`
	BodyType        string         `json:"body_type"`
	FitPreference   string         `json:"fit_preference"`
	PreferredStyles pq.StringArray `gorm:"type:text[]" json:"preferred_styles"`
}

type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status              string     `json:"-"`
	GoogleID            string     `json:"-"`
	AppleID             string     `json:"-"`
	UTMSource           string     `json:"utm_source"`
	Platform            Platform   `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Subscription        *string    `json:"subscription"`
	ExpirationDate      *time.Time `json:"-"`
	ConfirmedDeleteDate *time.Time `json:"-"`

	ReceiveNotifications bool `json:"receive_notifications"`
	IsSuperadmin         bool `json:"is_superadmin"`

	// user app image/avatar
	AvatarURL string `json:"avatar_url"`

	FullBodyAvatarSet bool `json:"full_body_avatar_set"`
	// user full body avatar for outfit previews
	UserFullBodyImageURL *string `json:"user_image_url"`
	// idle, processing, completed, failed
	FullBodyAvatarStatus                 string  `json:"full_body_avatar_status"`
	FullBodyAvatarProcessingErrorMessage *string `json:"full_body_avatar_processing_error_message"`
	AvatarProcessRetryTimes              int     `json:"-"`

	StyleProfile StyleProfile `gorm:"embedded;embeddedPrefix:style_" json:"style_profile"`

	// per-user overrides of the plan defaults, set by support
	EnforcedDailyItemLimit   *int32 `json:"enforced_daily_item_limit"`
	EnforcedDailyOutfitLimit *int32 `json:"enforced_daily_outfit_limit"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (p *Platform) Scan(value interface{}) error {
	*p = Platform(value.(string))
	return nil
}

func (p Platform) Value() string {
	return string(p)
}

func ScanPlatform(value string) Platform {
	return Platform(value)
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^ios|android|web$", fl.Field().String())
	return matched
}

func ValidatePlatformRaw(value string) bool {
	matched, _ := regexp.MatchString("^ios|android|web$", value)
	return matched
}

type Subscription string

const (
	Free  Subscription = "free"
	Trial Subscription = "trial"
	Pro   Subscription = "pro"
)

func (s *Subscription) Scan(value interface{}) error {
	*s = Subscription(value.(string))
	return nil
}

func (s Subscription) Value() (string, error) {
	return string(s), nil
}

// ValidateClothingType is registered on the echo validator; the richer
// normalization with the "other" fallback lives in the styles package and
// is applied to LLM output rather than user requests.
func ValidateClothingType(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^shirt|top|pants|bottom|dress|skirt|jacket|sweater|shoes|accessory|other$", fl.Field().String())
	return matched
}

func ValidateSeason(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^spring|summer|fall|winter|all$", fl.Field().String())
	return matched
}

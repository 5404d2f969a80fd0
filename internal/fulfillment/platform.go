package fulfillment

import "strings"

// Platform identifies the rich-message platform a request came from or a
// response element is meant for.
type Platform string

const (
	PlatformUnspecified     Platform = "PLATFORM_UNSPECIFIED"
	PlatformActionsOnGoogle Platform = "ACTIONS_ON_GOOGLE"
	PlatformFacebook        Platform = "FACEBOOK"
	PlatformSlack           Platform = "SLACK"
	PlatformTelegram        Platform = "TELEGRAM"
	PlatformKik             Platform = "KIK"
	PlatformSkype           Platform = "SKYPE"
	PlatformLine            Platform = "LINE"
	PlatformViber           Platform = "VIBER"
)

// supportedPlatforms is the fixed set of platforms that accept rich messages.
var supportedPlatforms = []Platform{
	PlatformActionsOnGoogle,
	PlatformFacebook,
	PlatformSlack,
	PlatformTelegram,
	PlatformKik,
	PlatformSkype,
	PlatformLine,
	PlatformViber,
}

// sourceAliases maps the lowercase source strings sent by the platform onto
// platform constants.
var sourceAliases = map[string]Platform{
	"google":            PlatformActionsOnGoogle,
	"actions_on_google": PlatformActionsOnGoogle,
	"facebook":          PlatformFacebook,
	"slack":             PlatformSlack,
	"slack_testbot":     PlatformSlack,
	"telegram":          PlatformTelegram,
	"kik":               PlatformKik,
	"skype":             PlatformSkype,
	"line":              PlatformLine,
	"viber":             PlatformViber,
}

// SupportedPlatforms returns the platforms that accept rich messages.
func SupportedPlatforms() []Platform {
	out := make([]Platform, len(supportedPlatforms))
	copy(out, supportedPlatforms)
	return out
}

// IsSupported reports whether p is one of the rich-message platforms.
func (p Platform) IsSupported() bool {
	for _, s := range supportedPlatforms {
		if s == p {
			return true
		}
	}
	return false
}

// IsUnspecified reports whether p carries no platform affinity.
func (p Platform) IsUnspecified() bool {
	return p == "" || p == PlatformUnspecified
}

// String returns the platform as a plain string.
func (p Platform) String() string {
	return string(p)
}

// normalize folds the empty platform into PlatformUnspecified.
func (p Platform) normalize() Platform {
	if p.IsUnspecified() {
		return PlatformUnspecified
	}
	return p
}

// ParseSource converts a request source string into a Platform. Known
// aliases and enum names resolve to constants; anything else is kept
// verbatim so that validation can reject it later.
func ParseSource(source string) Platform {
	s := strings.TrimSpace(source)
	if s == "" {
		return PlatformUnspecified
	}
	if p, ok := sourceAliases[strings.ToLower(s)]; ok {
		return p
	}
	upper := Platform(strings.ToUpper(s))
	if upper == PlatformUnspecified || upper.IsSupported() {
		return upper
	}
	return Platform(s)
}

// v1Names holds the lowercase platform names used by the v1 wire format.
var v1Names = map[Platform]string{
	PlatformActionsOnGoogle: "google",
	PlatformFacebook:        "facebook",
	PlatformSlack:           "slack",
	PlatformTelegram:        "telegram",
	PlatformKik:             "kik",
	PlatformSkype:           "skype",
	PlatformLine:            "line",
	PlatformViber:           "viber",
}

func v1PlatformName(p Platform) string {
	return v1Names[p]
}

func v1PlatformFromName(name string) Platform {
	for p, n := range v1Names {
		if n == name {
			return p
		}
	}
	return PlatformUnspecified
}

package domain

import "strings"

// Platform is the client family inferred from a user-agent string.
type Platform string

// Known platforms.
const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	// PlatformAltBrowser covers Edge, Samsung Internet and Opera.
	PlatformAltBrowser Platform = "alt_browser"
	PlatformGeneric    Platform = "generic"
)

// DetectPlatform sniffs a user-agent string.
// Alternative browsers are checked first since their UAs also mention Android.
func DetectPlatform(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return PlatformGeneric
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge/") ||
		strings.Contains(ua, "samsungbrowser") || strings.Contains(ua, "opr/") ||
		strings.Contains(ua, "opera"):
		return PlatformAltBrowser
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return PlatformIOS
	case strings.Contains(ua, "android"):
		return PlatformAndroid
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		return PlatformIOS
	default:
		return PlatformGeneric
	}
}

// IsIOS reports whether userAgent identifies an iOS device.
func IsIOS(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	return strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod")
}

// Guidance returns recovery steps for a category on this platform.
// Only camera categories carry platform-specific steps.
func (p Platform) Guidance(category ErrorCategory) []string {
	if !category.IsCamera() {
		return []string{"Reload the page to try again."}
	}
	if category != CategoryCameraPermission {
		return []string{
			"Close other applications that may be using the camera.",
			"Reload the page to try again.",
		}
	}
	switch p {
	case PlatformIOS:
		return []string{
			"Open Settings > Safari > Camera and choose Allow.",
			"Make sure the page is opened in Safari over HTTPS.",
			"Reload the page.",
		}
	case PlatformAndroid:
		return []string{
			"Tap the lock icon next to the address bar.",
			"Open Permissions and allow Camera.",
			"Reload the page.",
		}
	case PlatformAltBrowser:
		return []string{
			"Open the browser's site settings for this page.",
			"Set Camera to Allow.",
			"Reload the page.",
		}
	default:
		return []string{
			"Allow camera access in the browser prompt or site settings.",
			"Reload the page.",
		}
	}
}

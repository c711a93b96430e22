// Package attribution extracts visitor attribution from landing requests.
package attribution

import (
	"net/url"
	"strings"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// DefaultVariant is assigned when the landing URL names no variant.
const DefaultVariant = "A"

// Device types reported for a user agent.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// FromQuery builds attribution from landing URL query parameters, the
// referrer and the user agent. The variant comes from "var", then "flow".
func FromQuery(q url.Values, referrer, userAgent string) model.Attribution {
	variant := firstNonEmpty(q.Get("var"), q.Get("flow"))
	if variant == "" {
		variant = DefaultVariant
	}
	return model.Attribution{
		Variant:     variant,
		UTMSource:   clean(q.Get("utm_source")),
		UTMMedium:   clean(q.Get("utm_medium")),
		UTMCampaign: clean(q.Get("utm_campaign")),
		UTMContent:  clean(q.Get("utm_content")),
		UTMTerm:     clean(q.Get("utm_term")),
		Referrer:    strings.TrimSpace(referrer),
		UserAgent:   strings.TrimSpace(userAgent),
		DeviceType:  DeviceType(userAgent),
		FBClickID:   clean(q.Get("fbclid")),
		GClickID:    clean(q.Get("gclid")),
	}
}

// FromURL parses a landing URL and builds attribution from it.
func FromURL(raw, referrer, userAgent string) (model.Attribution, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return model.Attribution{}, err
	}
	return FromQuery(u.Query(), referrer, userAgent), nil
}

// Normalize fills defaults on attribution supplied by a client.
func Normalize(a model.Attribution) model.Attribution {
	a.Variant = clean(a.Variant)
	if a.Variant == "" {
		a.Variant = DefaultVariant
	}
	a.UTMSource = clean(a.UTMSource)
	a.UTMMedium = clean(a.UTMMedium)
	a.UTMCampaign = clean(a.UTMCampaign)
	a.UTMContent = clean(a.UTMContent)
	a.UTMTerm = clean(a.UTMTerm)
	a.UserAgent = strings.TrimSpace(a.UserAgent)
	if a.DeviceType == "" {
		a.DeviceType = DeviceType(a.UserAgent)
	}
	return a
}

// DeviceType classifies a user agent.
func DeviceType(userAgent string) string {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	switch {
	case ua == "":
		return DeviceUnknown
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "kindle"),
		strings.Contains(ua, "silk"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return DeviceTablet
	case strings.Contains(ua, "mobi"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "ipod"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "windows phone"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

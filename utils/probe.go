package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"
)

// GeoTimeout bounds the geolocation lookup. Session start must never
// block on the probe longer than this.
const GeoTimeout = 5 * time.Second

// geoAPIBaseURL is the default ipapi.co endpoint. Tests point BaseURL
// at a local server instead.
const geoAPIBaseURL = "https://ipapi.co"

type GeoIPResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// ParseUserAgent extracts browser, OS and device type from a User-Agent
// string. Missing or unparseable input resolves to "Unknown" values.
func ParseUserAgent(userAgent string) (browser, os, device string) {
	if userAgent == "" {
		return "Unknown Browser", "Unknown OS", "Desktop"
	}

	parsed := ua.Parse(userAgent)

	browser = parsed.Name
	if browser == "" {
		browser = "Unknown Browser"
	}

	os = parsed.OS
	if os == "" {
		os = "Unknown OS"
	}

	device = "Desktop"
	if parsed.Mobile {
		if strings.Contains(userAgent, "iPhone") {
			device = "iPhone"
		} else {
			device = "Mobile"
		}
	} else if parsed.Tablet {
		device = "Tablet"
	}

	return strings.TrimSpace(browser), strings.TrimSpace(os), device
}

// DeviceDescriptor formats a single-line device descriptor for a session row.
func DeviceDescriptor(userAgent string) string {
	browser, os, device := ParseUserAgent(userAgent)
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}

// EnvProbe resolves best-effort device and location descriptors for a
// session. Lookups are capability-checked and bounded: every failure
// resolves to an "Unknown" value, never to an error on the session-start
// critical path.
type EnvProbe struct {
	Client  *http.Client
	BaseURL string
}

func NewEnvProbe() *EnvProbe {
	return &EnvProbe{
		Client:  &http.Client{Timeout: GeoTimeout},
		BaseURL: geoAPIBaseURL,
	}
}

func (p *EnvProbe) DeviceInfo(userAgent string) string {
	return DeviceDescriptor(userAgent)
}

// Location resolves a "City, Country" string for an IP address via
// ipapi.co. Local and private addresses short-circuit without a lookup.
func (p *EnvProbe) Location(ctx context.Context, ip string) string {
	if ip == "" {
		return "Unknown Location"
	}

	if ip == "127.0.0.1" || ip == "::1" || strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.") {
		return "Local Network"
	}

	ctx, cancel := context.WithTimeout(ctx, GeoTimeout)
	defer cancel()

	base := p.BaseURL
	if base == "" {
		base = geoAPIBaseURL
	}

	url := fmt.Sprintf("%s/%s/json/", base, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "Unknown Location"
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: GeoTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "Unknown Location"
	}
	defer resp.Body.Close()

	var geo GeoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return "Unknown Location"
	}

	switch {
	case geo.City != "" && geo.Country != "":
		return fmt.Sprintf("%s, %s", geo.City, geo.Country)
	case geo.Country != "":
		return geo.Country
	default:
		return "Unknown Location"
	}
}

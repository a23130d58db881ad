package settings

import (
	"time"
)

// Theme is the UI color scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

// NotificationSettings controls how alerts reach the user
type NotificationSettings struct {
	Enabled bool `json:"enabled"`
	Sound   bool `json:"sound"`
	Desktop bool `json:"desktop"`
}

// LayoutSettings holds shell dimensions in pixels
type LayoutSettings struct {
	HeaderHeight   int `json:"headerHeight"`
	SidebarWidth   int `json:"sidebarWidth"`
	ContentPadding int `json:"contentPadding"`
}

// UISettings is the document stored under ui-storage
type UISettings struct {
	Theme            Theme                `json:"theme"`
	SidebarCollapsed bool                 `json:"sidebarCollapsed"`
	Notifications    NotificationSettings `json:"notifications"`
	Layout           LayoutSettings       `json:"layout"`
}

// DefaultUISettings returns the settings of a fresh install
func DefaultUISettings() UISettings {
	return UISettings{
		Theme: ThemeLight,
		Notifications: NotificationSettings{
			Enabled: true,
			Sound:   true,
			Desktop: true,
		},
		Layout: LayoutSettings{
			HeaderHeight:   64,
			SidebarWidth:   200,
			ContentPadding: 24,
		},
	}
}

// NotificationPatch updates individual notification switches
type NotificationPatch struct {
	Enabled *bool `json:"enabled,omitempty"`
	Sound   *bool `json:"sound,omitempty"`
	Desktop *bool `json:"desktop,omitempty"`
}

// LayoutPatch updates individual layout dimensions
type LayoutPatch struct {
	HeaderHeight   *int `json:"headerHeight,omitempty"`
	SidebarWidth   *int `json:"sidebarWidth,omitempty"`
	ContentPadding *int `json:"contentPadding,omitempty"`
}

// Preferences are locale and display choices
type Preferences struct {
	Language     string `json:"language"`
	Timezone     string `json:"timezone"`
	DateFormat   string `json:"dateFormat"`
	NumberFormat string `json:"numberFormat"`
	Currency     string `json:"currency"`
}

// PreferencesPatch updates individual preferences
type PreferencesPatch struct {
	Language     *string `json:"language,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
	DateFormat   *string `json:"dateFormat,omitempty"`
	NumberFormat *string `json:"numberFormat,omitempty"`
	Currency     *string `json:"currency,omitempty"`
}

// SupportedLanguages lists the accepted Preferences.Language values
var SupportedLanguages = []string{"zh-CN", "en-US"}

// DefaultPreferences returns the preferences of a fresh install
func DefaultPreferences() Preferences {
	return Preferences{
		Language:     "zh-CN",
		Timezone:     "Asia/Shanghai",
		DateFormat:   "YYYY-MM-DD",
		NumberFormat: "zh-CN",
		Currency:     "CNY",
	}
}

// DefaultFeatureFlags holds every known flag with its default state
var DefaultFeatureFlags = map[string]bool{
	"realTimeData":   true,  // Live quote streaming
	"advancedCharts": false, // Indicator overlays
	"aiAnalysis":     false, // AI monitor pages
	"mobileApp":      false, // Mobile companion
}

// AppSettings is the document stored under app-storage
type AppSettings struct {
	Preferences  Preferences     `json:"preferences"`
	FeatureFlags map[string]bool `json:"featureFlags"`
}

// DefaultAppSettings returns the app settings of a fresh install
func DefaultAppSettings() AppSettings {
	flags := make(map[string]bool, len(DefaultFeatureFlags))
	for k, v := range DefaultFeatureFlags {
		flags[k] = v
	}
	return AppSettings{
		Preferences:  DefaultPreferences(),
		FeatureFlags: flags,
	}
}

// AppInfo describes the running build. Not persisted.
type AppInfo struct {
	Version     string `json:"version"`
	BuildTime   string `json:"buildTime"`
	Environment string `json:"environment"`
}

// SystemStatus is runtime sync state. Not persisted.
type SystemStatus struct {
	IsOnline     bool       `json:"isOnline"`
	LastSyncTime *time.Time `json:"lastSyncTime"`
	// SyncInterval in milliseconds
	SyncInterval int64 `json:"syncInterval"`
}

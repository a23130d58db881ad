package settings

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/storage"
)

const moduleName = "settings"

// Store persists whole documents under fixed keys
type Store interface {
	Load(key string, v interface{}) (bool, error)
	Save(key string, v interface{}) error
}

// Emitter publishes settings events
type Emitter interface {
	EmitTyped(module string, data events.EventData)
}

// Service manages UI settings (ui-storage), app settings (app-storage)
// and the runtime system status.
type Service struct {
	mu     sync.RWMutex
	ui     UISettings
	app    AppSettings
	status SystemStatus
	info   AppInfo

	store   Store
	emitter Emitter
	log     zerolog.Logger
}

// NewService creates a settings service holding defaults. Call Load to restore persisted values.
func NewService(store Store, emitter Emitter, info AppInfo, syncInterval time.Duration, log zerolog.Logger) *Service {
	return &Service{
		ui:  DefaultUISettings(),
		app: DefaultAppSettings(),
		status: SystemStatus{
			IsOnline:     true,
			SyncInterval: syncInterval.Milliseconds(),
		},
		info:    info,
		store:   store,
		emitter: emitter,
		log:     log.With().Str("service", "settings").Logger(),
	}
}

// Load restores both persisted documents. Missing documents keep defaults;
// fields absent from a stored document keep their default values.
func (s *Service) Load() error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ui := DefaultUISettings()
	if _, err := s.store.Load(storage.KeyUI, &ui); err != nil {
		return fmt.Errorf("failed to load ui settings: %w", err)
	}
	if !ui.Theme.Valid() {
		s.log.Warn().Str("theme", string(ui.Theme)).Msg("Unknown stored theme, using default")
		ui.Theme = ThemeLight
	}

	app := DefaultAppSettings()
	if _, err := s.store.Load(storage.KeyApp, &app); err != nil {
		return fmt.Errorf("failed to load app settings: %w", err)
	}
	if app.FeatureFlags == nil {
		app.FeatureFlags = make(map[string]bool, len(DefaultFeatureFlags))
	}
	for flag, v := range DefaultFeatureFlags {
		if _, ok := app.FeatureFlags[flag]; !ok {
			app.FeatureFlags[flag] = v
		}
	}

	s.ui = ui
	s.app = app
	return nil
}

// UI returns the current UI settings
func (s *Service) UI() UISettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// SetTheme selects a theme
func (s *Service) SetTheme(theme Theme) (UISettings, error) {
	if !theme.Valid() {
		return UISettings{}, domain.NewValidationError("theme", fmt.Sprintf("unknown theme %q", theme))
	}
	return s.updateUI("theme", func(ui *UISettings) error {
		ui.Theme = theme
		return nil
	})
}

// ToggleTheme switches light to dark and anything else to light
func (s *Service) ToggleTheme() (UISettings, error) {
	return s.updateUI("theme", func(ui *UISettings) error {
		if ui.Theme == ThemeLight {
			ui.Theme = ThemeDark
		} else {
			ui.Theme = ThemeLight
		}
		return nil
	})
}

// ToggleSidebar flips the sidebar collapse state
func (s *Service) ToggleSidebar() (UISettings, error) {
	return s.updateUI("sidebar", func(ui *UISettings) error {
		ui.SidebarCollapsed = !ui.SidebarCollapsed
		return nil
	})
}

// SetSidebarCollapsed sets the sidebar collapse state
func (s *Service) SetSidebarCollapsed(collapsed bool) (UISettings, error) {
	return s.updateUI("sidebar", func(ui *UISettings) error {
		ui.SidebarCollapsed = collapsed
		return nil
	})
}

// UpdateNotifications applies the non-nil fields of patch
func (s *Service) UpdateNotifications(patch NotificationPatch) (UISettings, error) {
	return s.updateUI("notifications", func(ui *UISettings) error {
		if patch.Enabled != nil {
			ui.Notifications.Enabled = *patch.Enabled
		}
		if patch.Sound != nil {
			ui.Notifications.Sound = *patch.Sound
		}
		if patch.Desktop != nil {
			ui.Notifications.Desktop = *patch.Desktop
		}
		return nil
	})
}

// UpdateLayout applies the non-nil fields of patch. Dimensions must be positive.
func (s *Service) UpdateLayout(patch LayoutPatch) (UISettings, error) {
	for field, v := range map[string]*int{
		"headerHeight":   patch.HeaderHeight,
		"sidebarWidth":   patch.SidebarWidth,
		"contentPadding": patch.ContentPadding,
	} {
		if v != nil && *v <= 0 {
			return UISettings{}, domain.NewValidationError(field, "must be positive")
		}
	}

	return s.updateUI("layout", func(ui *UISettings) error {
		if patch.HeaderHeight != nil {
			ui.Layout.HeaderHeight = *patch.HeaderHeight
		}
		if patch.SidebarWidth != nil {
			ui.Layout.SidebarWidth = *patch.SidebarWidth
		}
		if patch.ContentPadding != nil {
			ui.Layout.ContentPadding = *patch.ContentPadding
		}
		return nil
	})
}

func (s *Service) updateUI(section string, fn func(*UISettings) error) (UISettings, error) {
	s.mu.Lock()
	next := s.ui
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return UISettings{}, err
	}
	if err := s.save(storage.KeyUI, next); err != nil {
		s.mu.Unlock()
		return UISettings{}, err
	}
	s.ui = next
	s.mu.Unlock()

	s.emit(storage.KeyUI, section)
	return next, nil
}

// App returns the current app settings
func (s *Service) App() AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneApp(s.app)
}

// UpdatePreferences applies the non-nil fields of patch
func (s *Service) UpdatePreferences(patch PreferencesPatch) (AppSettings, error) {
	if patch.Language != nil && !supportedLanguage(*patch.Language) {
		return AppSettings{}, domain.NewValidationError("language", fmt.Sprintf("unsupported language %q", *patch.Language))
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return AppSettings{}, domain.NewValidationError("timezone", err.Error())
		}
	}

	return s.updateApp("preferences", func(app *AppSettings) error {
		p := &app.Preferences
		if patch.Language != nil {
			p.Language = *patch.Language
		}
		if patch.Timezone != nil {
			p.Timezone = *patch.Timezone
		}
		if patch.DateFormat != nil {
			p.DateFormat = *patch.DateFormat
		}
		if patch.NumberFormat != nil {
			p.NumberFormat = *patch.NumberFormat
		}
		if patch.Currency != nil {
			p.Currency = *patch.Currency
		}
		return nil
	})
}

// ResetPreferences restores the default preferences, leaving feature flags untouched
func (s *Service) ResetPreferences() (AppSettings, error) {
	return s.updateApp("preferences", func(app *AppSettings) error {
		app.Preferences = DefaultPreferences()
		return nil
	})
}

// ToggleFeatureFlag flips one known flag
func (s *Service) ToggleFeatureFlag(flag string) (AppSettings, error) {
	if _, ok := DefaultFeatureFlags[flag]; !ok {
		return AppSettings{}, domain.NewNotFoundError("feature flag", flag)
	}
	return s.updateApp("featureFlags", func(app *AppSettings) error {
		app.FeatureFlags[flag] = !app.FeatureFlags[flag]
		return nil
	})
}

// SetFeatureFlags sets several known flags at once
func (s *Service) SetFeatureFlags(flags map[string]bool) (AppSettings, error) {
	for flag := range flags {
		if _, ok := DefaultFeatureFlags[flag]; !ok {
			return AppSettings{}, domain.NewValidationError("featureFlags", fmt.Sprintf("unknown flag %q", flag))
		}
	}
	return s.updateApp("featureFlags", func(app *AppSettings) error {
		for flag, v := range flags {
			app.FeatureFlags[flag] = v
		}
		return nil
	})
}

func (s *Service) updateApp(section string, fn func(*AppSettings) error) (AppSettings, error) {
	s.mu.Lock()
	next := cloneApp(s.app)
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return AppSettings{}, err
	}
	if err := s.save(storage.KeyApp, next); err != nil {
		s.mu.Unlock()
		return AppSettings{}, err
	}
	s.app = next
	s.mu.Unlock()

	s.emit(storage.KeyApp, section)
	return cloneApp(next), nil
}

// Info returns the build description
func (s *Service) Info() AppInfo {
	return s.info
}

// Status returns the runtime sync state
func (s *Service) Status() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetOnline records connectivity
func (s *Service) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.IsOnline = online
}

// MarkSynced records a completed sync at t
func (s *Service) MarkSynced(t time.Time) SystemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastSyncTime = &t
	return s.status
}

func (s *Service) save(key string, v interface{}) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(key, v); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to persist settings")
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Service) emit(key, section string) {
	if s.emitter == nil {
		return
	}
	s.emitter.EmitTyped(moduleName, &events.SettingsChangedData{Key: key, Section: section})
}

func cloneApp(a AppSettings) AppSettings {
	out := a
	out.FeatureFlags = make(map[string]bool, len(a.FeatureFlags))
	for k, v := range a.FeatureFlags {
		out.FeatureFlags[k] = v
	}
	return out
}

func supportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

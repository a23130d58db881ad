package settings

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/storage"
)

type memoryStore struct {
	docs    map[string][]byte
	failing bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string][]byte{}}
}

func (m *memoryStore) Load(key string, v interface{}) (bool, error) {
	data, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *memoryStore) Save(key string, v interface{}) error {
	if m.failing {
		return errors.New("store unavailable")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.docs[key] = data
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.SettingsChangedData
}

func (r *recordingEmitter) EmitTyped(module string, data events.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data.(*events.SettingsChangedData))
}

func newTestService() (*Service, *memoryStore, *recordingEmitter) {
	store := newMemoryStore()
	emitter := &recordingEmitter{}
	svc := NewService(store, emitter, AppInfo{Version: "test"}, 30*time.Second, zerolog.Nop())
	return svc, store, emitter
}

func TestService_Defaults(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.Load())

	assert.Equal(t, DefaultUISettings(), svc.UI())
	assert.Equal(t, DefaultAppSettings(), svc.App())
	assert.Equal(t, int64(30000), svc.Status().SyncInterval)
	assert.Nil(t, svc.Status().LastSyncTime)
}

func TestService_ToggleTheme(t *testing.T) {
	svc, _, emitter := newTestService()

	ui, err := svc.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, ui.Theme)

	ui, err = svc.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, ui.Theme)

	_, err = svc.SetTheme(ThemeAuto)
	require.NoError(t, err)
	ui, err = svc.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, ui.Theme, "auto toggles to light")

	_, err = svc.SetTheme("sepia")
	assert.True(t, domain.IsValidation(err))

	require.Len(t, emitter.events, 4)
	assert.Equal(t, storage.KeyUI, emitter.events[0].Key)
	assert.Equal(t, "theme", emitter.events[0].Section)
}

func TestService_Sidebar(t *testing.T) {
	svc, _, _ := newTestService()

	ui, err := svc.ToggleSidebar()
	require.NoError(t, err)
	assert.True(t, ui.SidebarCollapsed)

	ui, err = svc.SetSidebarCollapsed(false)
	require.NoError(t, err)
	assert.False(t, ui.SidebarCollapsed)
}

func TestService_NotificationsAndLayout(t *testing.T) {
	svc, _, _ := newTestService()

	off := false
	ui, err := svc.UpdateNotifications(NotificationPatch{Sound: &off})
	require.NoError(t, err)
	assert.Equal(t, NotificationSettings{Enabled: true, Sound: false, Desktop: true}, ui.Notifications)

	width := 240
	ui, err = svc.UpdateLayout(LayoutPatch{SidebarWidth: &width})
	require.NoError(t, err)
	assert.Equal(t, LayoutSettings{HeaderHeight: 64, SidebarWidth: 240, ContentPadding: 24}, ui.Layout)

	zero := 0
	_, err = svc.UpdateLayout(LayoutPatch{HeaderHeight: &zero})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 64, svc.UI().Layout.HeaderHeight)
}

func TestService_Preferences(t *testing.T) {
	svc, _, _ := newTestService()

	lang, tz := "en-US", "UTC"
	app, err := svc.UpdatePreferences(PreferencesPatch{Language: &lang, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "en-US", app.Preferences.Language)
	assert.Equal(t, "UTC", app.Preferences.Timezone)
	assert.Equal(t, "CNY", app.Preferences.Currency)

	bad := "fr-FR"
	_, err = svc.UpdatePreferences(PreferencesPatch{Language: &bad})
	assert.True(t, domain.IsValidation(err))

	badTZ := "Mars/Olympus"
	_, err = svc.UpdatePreferences(PreferencesPatch{Timezone: &badTZ})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ToggleFeatureFlag("advancedCharts")
	require.NoError(t, err)
	app, err = svc.ResetPreferences()
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), app.Preferences)
	assert.True(t, app.FeatureFlags["advancedCharts"], "reset leaves flags alone")
}

func TestService_FeatureFlags(t *testing.T) {
	svc, _, _ := newTestService()

	app, err := svc.ToggleFeatureFlag("realTimeData")
	require.NoError(t, err)
	assert.False(t, app.FeatureFlags["realTimeData"])

	_, err = svc.ToggleFeatureFlag("teleport")
	assert.True(t, domain.IsNotFound(err))

	app, err = svc.SetFeatureFlags(map[string]bool{"aiAnalysis": true, "mobileApp": true})
	require.NoError(t, err)
	assert.True(t, app.FeatureFlags["aiAnalysis"])
	assert.True(t, app.FeatureFlags["mobileApp"])

	_, err = svc.SetFeatureFlags(map[string]bool{"aiAnalysis": false, "teleport": true})
	assert.True(t, domain.IsValidation(err))
	assert.True(t, svc.App().FeatureFlags["aiAnalysis"], "rejected batch is not applied")

	// returned maps are copies
	app.FeatureFlags["aiAnalysis"] = false
	assert.True(t, svc.App().FeatureFlags["aiAnalysis"])
}

func TestService_PersistsAndLoads(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.SetTheme(ThemeDark)
	require.NoError(t, err)
	_, err = svc.ToggleFeatureFlag("aiAnalysis")
	require.NoError(t, err)

	restored := NewService(store, nil, AppInfo{}, time.Minute, zerolog.Nop())
	require.NoError(t, restored.Load())
	assert.Equal(t, ThemeDark, restored.UI().Theme)
	assert.True(t, restored.App().FeatureFlags["aiAnalysis"])
}

func TestService_LoadFillsMissingFields(t *testing.T) {
	store := newMemoryStore()
	store.docs[storage.KeyUI] = []byte(`{"theme":"neon","sidebarCollapsed":true}`)
	store.docs[storage.KeyApp] = []byte(`{"featureFlags":{"mobileApp":true}}`)

	svc := NewService(store, nil, AppInfo{}, time.Minute, zerolog.Nop())
	require.NoError(t, svc.Load())

	ui := svc.UI()
	assert.Equal(t, ThemeLight, ui.Theme)
	assert.True(t, ui.SidebarCollapsed)
	assert.Equal(t, 64, ui.Layout.HeaderHeight)

	app := svc.App()
	assert.True(t, app.FeatureFlags["mobileApp"])
	assert.True(t, app.FeatureFlags["realTimeData"])
	assert.Equal(t, "zh-CN", app.Preferences.Language)
}

func TestService_SaveFailureKeepsState(t *testing.T) {
	svc, store, emitter := newTestService()
	store.failing = true

	_, err := svc.ToggleTheme()
	require.Error(t, err)
	assert.Equal(t, ThemeLight, svc.UI().Theme)
	assert.Empty(t, emitter.events)
}

func TestService_Status(t *testing.T) {
	svc, _, _ := newTestService()

	svc.SetOnline(false)
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	status := svc.MarkSynced(now)

	assert.False(t, status.IsOnline)
	require.NotNil(t, status.LastSyncTime)
	assert.Equal(t, now, *status.LastSyncTime)
	assert.Equal(t, "test", svc.Info().Version)
}

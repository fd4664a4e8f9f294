package tray

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monitorcontrol/internal/core/presence"
	"monitorcontrol/resources"
)

type plainApp struct {
	fyne.App
}

type fakeLifecycle struct {
	fyne.Lifecycle
	app       *desktopApp
	onStarted func()
}

func (lifecycle *fakeLifecycle) SetOnStarted(fn func()) {
	lifecycle.app.calls = append(lifecycle.app.calls, "on-started")
	lifecycle.onStarted = fn
}

// started mimics the fyne driver: the tray is built from whatever was
// registered so far, then OnStarted fires.
func (lifecycle *fakeLifecycle) started() {
	lifecycle.app.calls = append(lifecycle.app.calls, "run")
	lifecycle.app.trayBuilt = lifecycle.app.menu != nil
	if lifecycle.onStarted != nil {
		lifecycle.onStarted()
	}
}

type desktopApp struct {
	fyne.App
	lifecycle *fakeLifecycle
	menu      *fyne.Menu
	icons     []fyne.Resource
	calls     []string
	trayBuilt bool
	quit      atomic.Bool
}

func (app *desktopApp) SetSystemTrayMenu(menu *fyne.Menu) {
	app.calls = append(app.calls, "menu")
	app.menu = menu
}

func (app *desktopApp) SetSystemTrayIcon(icon fyne.Resource) {
	app.calls = append(app.calls, "icon")
	app.icons = append(app.icons, icon)
}

func (app *desktopApp) SetSystemTrayWindow(window fyne.Window) {}
func (app *desktopApp) Lifecycle() fyne.Lifecycle { return app.lifecycle }
func (app *desktopApp) Quit() { app.quit.Store(true) }

type sink struct {
	mu     sync.Mutex
	events []presence.Event
	err    error
}

func (sink *sink) send(event presence.Event) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.err != nil {
		return sink.err
	}
	sink.events = append(sink.events, event)
	return nil
}

func (sink *sink) snapshot() []presence.Event {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	return append([]presence.Event(nil), sink.events...)
}

type harness struct {
	app     *desktopApp
	sink    *sink
	manager *Manager
	tooltip string
	tapped  func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		app:  &desktopApp{App: test.NewTempApp(t)},
		sink: &sink{},
	}
	h.app.lifecycle = &fakeLifecycle{app: h.app}
	manager, err := New(h.app, "MonitorControl", h.sink.send, nil)
	require.NoError(t, err)
	manager.do = func(fn func()) { fn() }
	manager.setTooltip = func(tooltip string) { h.tooltip = tooltip }
	manager.setOnTapped = func(fn func()) { h.tapped = fn }
	h.manager = manager
	return h
}

// newLiveHarness registers the tray and returns the handle created on Init.
func newLiveHarness(t *testing.T) (*harness, presence.TrayHandle) {
	t.Helper()
	h := newHarness(t)
	require.NoError(t, h.manager.Prepare(trayOptions()))
	handle, err := h.manager.NewTray(trayOptions())
	require.NoError(t, err)
	return h, handle
}

func trayOptions() presence.TrayOptions {
	return presence.TrayOptions{
		Icon:    resources.MustTrayIcon(resources.PresentIcon),
		Tooltip: "Monitor Control",
		Menu:    []presence.MenuItem{{ID: presence.MenuQuitID, Label: "Quit"}},
	}
}

func TestNewRequiresDesktopApp(t *testing.T) {
	_, err := New(plainApp{}, "MonitorControl", func(presence.Event) error { return nil }, nil)
	assert.ErrorIs(t, err, ErrTrayUnsupported)
}

func TestStartForwardsInit(t *testing.T) {
	h := newHarness(t)
	h.manager.Start()
	require.NotNil(t, h.app.lifecycle.onStarted)
	assert.Empty(t, h.sink.snapshot())

	h.app.lifecycle.onStarted()
	events := h.sink.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, presence.EventInit, events[0].Kind)
}

func TestPrepareBuildsMenuAndIcon(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.manager.Prepare(trayOptions()))

	require.NotNil(t, h.app.menu)
	require.Len(t, h.app.menu.Items, 1)
	assert.Equal(t, "Quit", h.app.menu.Items[0].Label)
	assert.True(t, h.app.menu.Items[0].IsQuit)
	require.Len(t, h.app.icons, 1)
	assert.Equal(t, resources.MustTrayIcon(resources.PresentIcon).Resource, h.app.icons[0])
	assert.Nil(t, h.tapped)
}

func TestPrepareRejectsMissingIcon(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.manager.Prepare(presence.TrayOptions{}))
	assert.Empty(t, h.app.calls)
}

func TestTrayRegisteredBeforeRun(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.manager.Prepare(trayOptions()))
	h.manager.Start()
	h.app.lifecycle.started()

	assert.True(t, h.app.trayBuilt)
	assert.Equal(t, []string{"menu", "icon", "on-started", "run"}, h.app.calls)
	events := h.sink.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, presence.EventInit, events[0].Kind)

	_, err := h.manager.NewTray(trayOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu", "icon", "on-started", "run"}, h.app.calls, "init must not register the tray again")
	assert.Equal(t, "Monitor Control", h.tooltip)
	assert.NotNil(t, h.tapped)
}

func TestNewTrayRequiresPrepare(t *testing.T) {
	h := newHarness(t)
	_, err := h.manager.NewTray(trayOptions())
	assert.Error(t, err)
	assert.Nil(t, h.tapped)
}

func TestMenuIgnoredBeforeInit(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.manager.Prepare(trayOptions()))

	h.app.menu.Items[0].Action()
	assert.Empty(t, h.sink.snapshot())
}

func TestProducersForwardEvents(t *testing.T) {
	h, _ := newLiveHarness(t)

	h.tapped()
	h.app.menu.Items[0].Action()

	events := h.sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, presence.EventTray, events[0].Kind)
	assert.Equal(t, presence.TrayEvent{Kind: presence.TrayClick, Button: presence.ButtonLeft, State: presence.ButtonDown}, events[0].Tray)
	assert.Equal(t, presence.EventMenu, events[1].Kind)
	assert.Equal(t, presence.MenuQuitID, events[1].Menu.ID)
}

func TestSetIconSwapsResource(t *testing.T) {
	h, handle := newLiveHarness(t)

	away := resources.MustTrayIcon(resources.AwayIcon)
	handle.SetIcon(away)

	require.Len(t, h.app.icons, 2)
	assert.Equal(t, away.Resource, h.app.icons[1])
}

func TestSetIconReturnsAfterClose(t *testing.T) {
	h, handle := newLiveHarness(t)
	h.manager.do = func(func()) {}
	h.manager.Close()
	h.manager.Close()

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		handle.SetIcon(resources.MustTrayIcon(resources.AwayIcon))
		handle.Remove()
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("tray calls blocked after the ui loop ended")
	}
	assert.Len(t, h.app.icons, 1)
}

func TestRemoveDetachesProducers(t *testing.T) {
	h, handle := newLiveHarness(t)
	tapped := h.tapped
	quit := h.app.menu.Items[0].Action

	handle.Remove()
	handle.Remove()

	assert.Nil(t, h.tapped)
	tapped()
	quit()
	assert.Empty(t, h.sink.snapshot())
}

func TestForwardSurvivesStoppedLoop(t *testing.T) {
	h, _ := newLiveHarness(t)
	h.sink.err = errors.New("event loop stopped")

	assert.NotPanics(t, h.tapped)
	assert.NotPanics(t, h.app.menu.Items[0].Action)
	assert.Empty(t, h.sink.snapshot())
}

func TestStopQuitsApp(t *testing.T) {
	h := newHarness(t)
	h.manager.Stop()
	assert.Eventually(t, h.app.quit.Load, time.Second, 10*time.Millisecond)
}

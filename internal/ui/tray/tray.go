package tray

import (
	"errors"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/systray"
	"go.uber.org/zap"

	"monitorcontrol/internal/core/presence"
	"monitorcontrol/resources"
)

// ErrTrayUnsupported indicates the fyne driver has no system tray.
var ErrTrayUnsupported = errors.New("system tray unsupported on this platform")

// Sender delivers an event to the state machine's loop.
type Sender func(presence.Event) error

// Manager bridges fyne and systray callbacks to presence events and
// implements presence.Shell.
//
// fyne starts the native tray only if a tray menu was registered before
// App.Run. Prepare registers the menu and icon up front, and NewTray,
// called on Init, just attaches the producers.
type Manager struct {
	fyneApp fyne.App
	app     desktop.App
	title   string
	send    Sender
	logger  *zap.SugaredLogger

	prepared  bool
	live      atomic.Pointer[Handle]
	closed    chan struct{}
	closeOnce sync.Once

	do          func(func())
	setTooltip  func(string)
	setOnTapped func(func())
}

// New creates a tray manager for a desktop fyne app.
func New(fyneApp fyne.App, title string, send Sender, logger *zap.SugaredLogger) (*Manager, error) {
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return nil, ErrTrayUnsupported
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		fyneApp:     fyneApp,
		app:         desktopApp,
		title:       title,
		send:        send,
		logger:      logger,
		closed:      make(chan struct{}),
		do:          fyne.Do,
		setTooltip:  systray.SetTooltip,
		setOnTapped: systray.SetOnTapped,
	}, nil
}

// Prepare registers the tray menu and icon with fyne. It must be called
// before App.Run. Menu selections are dropped until NewTray.
func (manager *Manager) Prepare(options presence.TrayOptions) error {
	if options.Icon == nil || options.Icon.Resource == nil {
		return errors.New("tray icon has no image")
	}

	items := make([]*fyne.MenuItem, 0, len(options.Menu))
	for _, item := range options.Menu {
		id := item.ID
		menuItem := fyne.NewMenuItem(item.Label, func() {
			if handle := manager.live.Load(); handle != nil {
				handle.forward(presence.MenuSelected(id))
			}
		})
		// Keeps fyne from appending a quit item that bypasses the machine.
		menuItem.IsQuit = id == presence.MenuQuitID
		items = append(items, menuItem)
	}

	manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.title, items...))
	manager.app.SetSystemTrayIcon(options.Icon.Resource)
	manager.prepared = true
	return nil
}

// Start reports presence.EventInit once the fyne loop is running.
func (manager *Manager) Start() {
	manager.fyneApp.Lifecycle().SetOnStarted(func() {
		manager.forward(presence.InitEvent())
	})
}

// NewTray attaches the tooltip and the click and menu producers to the tray
// registered by Prepare.
func (manager *Manager) NewTray(options presence.TrayOptions) (presence.TrayHandle, error) {
	if !manager.prepared {
		return nil, errors.New("tray menu was not registered before the ui loop started")
	}

	handle := &Handle{manager: manager}
	manager.run(func() {
		manager.setTooltip(options.Tooltip)
		manager.setOnTapped(func() {
			handle.forward(presence.ClickEvent(presence.ButtonLeft, presence.ButtonDown))
		})
	})
	manager.live.Store(handle)
	return handle, nil
}

// Stop quits the fyne app, which also takes the icon off the tray.
func (manager *Manager) Stop() {
	manager.do(manager.fyneApp.Quit)
}

// Close releases any caller still waiting on the fyne thread. Call it once
// App.Run has returned.
func (manager *Manager) Close() {
	manager.closeOnce.Do(func() {
		close(manager.closed)
	})
}

// run executes fn on the fyne thread and waits for it, unless the manager
// is closed first.
func (manager *Manager) run(fn func()) {
	finished := make(chan struct{})
	manager.do(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-manager.closed:
	}
}

func (manager *Manager) forward(event presence.Event) {
	if err := manager.send(event); err != nil {
		manager.logger.Debugw("tray event dropped", "kind", event.Kind, "error", err)
	}
}

// Handle is a live tray icon.
type Handle struct {
	manager *Manager
	removed atomic.Bool
}

// SetIcon replaces the tray image and waits until fyne has applied it.
func (handle *Handle) SetIcon(icon *resources.Icon) {
	handle.manager.run(func() {
		handle.manager.app.SetSystemTrayIcon(icon.Resource)
	})
}

// Remove detaches the click producers. The icon itself goes away with Stop.
func (handle *Handle) Remove() {
	if !handle.removed.CompareAndSwap(false, true) {
		return
	}
	handle.manager.live.CompareAndSwap(handle, nil)
	handle.manager.run(func() {
		handle.manager.setOnTapped(nil)
	})
}

func (handle *Handle) forward(event presence.Event) {
	if handle.removed.Load() {
		return
	}
	handle.manager.forward(event)
}

package presence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"monitorcontrol/resources"
)

// PowerController applies the AC monitor timeout.
type PowerController interface {
	ApplyTimeout(ctx context.Context, minutes int) error
}

// TrayHandle is a live tray icon.
type TrayHandle interface {
	SetIcon(icon *resources.Icon)
	Remove()
}

// Shell creates the tray icon and stops the UI loop.
type Shell interface {
	NewTray(options TrayOptions) (TrayHandle, error)
	Stop()
}

// MenuItem is a tray menu entry.
type MenuItem struct {
	ID    string
	Label string
}

// TrayOptions describes the tray icon to create.
type TrayOptions struct {
	Icon    *resources.Icon
	Tooltip string
	Menu    []MenuItem
}

// Icons holds the image shown for each display state.
type Icons struct {
	Present *resources.Icon
	Away    *resources.Icon
}

func (icons Icons) forState(state State) *resources.Icon {
	if state == StateAway {
		return icons.Away
	}
	return icons.Present
}

// Config contains runtime options for Machine.
type Config struct {
	Tooltip string
}

// Machine is the tray state machine. It is owned by a single goroutine:
// the Loop that dispatches events to it.
//
// The tray handle is nil until EventInit and is assumed present for every
// later event, since the shell only produces tray and menu events after it
// exists.
type Machine struct {
	config Config
	icons  Icons
	power  PowerController
	shell  Shell
	logger *zap.SugaredLogger
	state  State
	tray   TrayHandle
}

// NewMachine creates a Machine in the present state.
func NewMachine(config Config, icons Icons, power PowerController, shell Shell, logger *zap.SugaredLogger) *Machine {
	if config.Tooltip == "" {
		config.Tooltip = "Monitor Control"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Machine{
		config: config,
		icons:  icons,
		power:  power,
		shell:  shell,
		logger: logger,
		state:  StatePresent,
	}
}

// State returns the current display state.
func (machine *Machine) State() State {
	return machine.state
}

// Exited reports whether Quit was handled.
func (machine *Machine) Exited() bool {
	return machine.state == StateExited
}

// Baseline applies the present timeout before any event is handled.
func (machine *Machine) Baseline(ctx context.Context) {
	machine.applyTimeout(ctx, TimeoutFor(StatePresent))
}

// Handle processes a single event. It reports done once the machine has
// exited; a non-nil error is fatal.
func (machine *Machine) Handle(ctx context.Context, event Event) (bool, error) {
	if machine.state == StateExited {
		return true, nil
	}

	switch event.Kind {
	case EventInit:
		return false, machine.handleInit()
	case EventTray:
		if event.Tray.isLeftPress() {
			machine.toggle(ctx)
		}
	case EventMenu:
		if event.Menu.ID == MenuQuitID {
			machine.quit(ctx)
			return true, nil
		}
	}
	return false, nil
}

// TrayOptions describes the tray icon for the current state.
func (machine *Machine) TrayOptions() TrayOptions {
	return TrayOptions{
		Icon:    machine.icons.forState(machine.state),
		Tooltip: machine.config.Tooltip,
		Menu:    []MenuItem{{ID: MenuQuitID, Label: "Quit"}},
	}
}

// Shutdown restores the present timeout when the UI loop ended without Quit.
func (machine *Machine) Shutdown(ctx context.Context) {
	if machine.state == StateExited {
		return
	}
	machine.logger.Infow("ui loop ended without quit, restoring monitor timeout", "state", machine.state)
	machine.applyTimeout(ctx, TimeoutFor(StatePresent))
	machine.state = StateExited
}

func (machine *Machine) handleInit() error {
	if machine.tray != nil {
		return nil
	}
	tray, err := machine.shell.NewTray(machine.TrayOptions())
	if err != nil {
		return fmt.Errorf("create tray icon: %w", err)
	}
	machine.tray = tray
	machine.logger.Debugw("tray icon created", "state", machine.state)
	return nil
}

func (machine *Machine) toggle(ctx context.Context) {
	next := StateAway
	if machine.state == StateAway {
		next = StatePresent
	}

	machine.tray.SetIcon(machine.icons.forState(next))
	machine.applyTimeout(ctx, TimeoutFor(next))

	machine.logger.Infow("display state changed", "from", machine.state, "to", next)
	machine.state = next
}

func (machine *Machine) quit(ctx context.Context) {
	machine.applyTimeout(ctx, TimeoutFor(StatePresent))
	machine.tray.Remove()
	machine.tray = nil
	machine.shell.Stop()
	machine.state = StateExited
	machine.logger.Infow("quit requested")
}

func (machine *Machine) applyTimeout(ctx context.Context, minutes int) {
	if err := machine.power.ApplyTimeout(ctx, minutes); err != nil {
		machine.logger.Errorw("failed to set monitor timeout", "minutes", minutes, "error", err)
	}
}

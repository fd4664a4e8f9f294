package presence

// State represents the live display mode.
type State string

const (
	StatePresent State = "present"
	StateAway    State = "away"
	StateExited  State = "exited"
)

// TimeoutFor returns the AC monitor timeout in minutes for a display state.
// Present keeps the monitor awake, Away lets it sleep after one minute.
func TimeoutFor(state State) int {
	if state == StateAway {
		return 1
	}
	return 0
}

// EventKind defines the source of an Event.
type EventKind string

const (
	EventInit EventKind = "init"
	EventTray EventKind = "tray"
	EventMenu EventKind = "menu"
)

// TrayEventKind distinguishes pointer activity on the tray icon.
type TrayEventKind string

const (
	TrayClick       TrayEventKind = "click"
	TrayDoubleClick TrayEventKind = "double_click"
	TrayEnter       TrayEventKind = "enter"
	TrayMove        TrayEventKind = "move"
	TrayLeave       TrayEventKind = "leave"
)

// MouseButton identifies the pressed button.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ButtonState is the edge of a click.
type ButtonState string

const (
	ButtonDown ButtonState = "down"
	ButtonUp   ButtonState = "up"
)

// MenuQuitID identifies the Quit menu command.
const MenuQuitID = "quit"

// TrayEvent describes pointer activity on the tray icon.
type TrayEvent struct {
	Kind   TrayEventKind
	Button MouseButton
	State  ButtonState
}

// MenuEvent reports a selected menu item.
type MenuEvent struct {
	ID string
}

// Event is a single item delivered to the state machine.
type Event struct {
	Kind EventKind
	Tray TrayEvent
	Menu MenuEvent
}

// InitEvent signals that the UI loop is running.
func InitEvent() Event {
	return Event{Kind: EventInit}
}

// ClickEvent reports a click on the tray icon.
func ClickEvent(button MouseButton, state ButtonState) Event {
	return Event{
		Kind: EventTray,
		Tray: TrayEvent{Kind: TrayClick, Button: button, State: state},
	}
}

// MenuSelected reports a menu item selection.
func MenuSelected(id string) Event {
	return Event{Kind: EventMenu, Menu: MenuEvent{ID: id}}
}

func (event TrayEvent) isLeftPress() bool {
	return event.Kind == TrayClick && event.Button == ButtonLeft && event.State == ButtonDown
}

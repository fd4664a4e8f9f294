package platform

import "strconv"

// -c selects the charger (AC) profile.
func timeoutCommand(minutes int) (string, []string) {
	return "pmset", []string{"-c", "displaysleep", strconv.Itoa(minutes)}
}

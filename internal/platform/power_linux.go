package platform

import "strconv"

// timeoutCommand drives X11 DPMS: standby and suspend stay disabled and the
// off timeout carries the requested delay. Zero disables it.
func timeoutCommand(minutes int) (string, []string) {
	return "xset", []string{"dpms", "0", "0", strconv.Itoa(minutes * 60)}
}

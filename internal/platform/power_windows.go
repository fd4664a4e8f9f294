package platform

import "strconv"

func timeoutCommand(minutes int) (string, []string) {
	return "powercfg.exe", []string{"/Change", "monitor-timeout-ac", strconv.Itoa(minutes)}
}

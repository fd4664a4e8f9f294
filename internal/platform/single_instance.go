package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	lockPortMin = 20000
	lockPortMax = 39999
)

// InstanceGuard keeps a loopback port bound for the life of the process so
// that a second copy cannot fight over the monitor timeout.
type InstanceGuard struct {
	listener net.Listener
}

// AcquireSingleInstance binds the loopback port derived from appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := net.JoinHostPort("127.0.0.1", fmt.Sprint(lockPort(appName)))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is taken", ErrAlreadyRunning, address)
	}
	return &InstanceGuard{listener: listener}, nil
}

// Release frees the lock. It is safe to call on a nil guard.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	guard.listener = nil
	return err
}

// Address returns the bound address, or "" once released.
func (guard *InstanceGuard) Address() string {
	if guard == nil || guard.listener == nil {
		return ""
	}
	return guard.listener.Addr().String()
}

func lockPort(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return lockPortMin + int(hash.Sum32()%uint32(lockPortMax-lockPortMin+1))
}

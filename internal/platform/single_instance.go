// Package platform holds process-level helpers.
package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("another site blocker is already running")

const (
	lockPortBase  = 40000
	lockPortCount = 10000
)

// Lock is a loopback listener held for the life of the process. Two blockers
// driving the same session database would fight over the hosts file and the
// alarms, so the lock port is derived from the database path.
type Lock struct {
	ln net.Listener
}

// Acquire takes the lock for key, typically the session database path.
func Acquire(key string) (*Lock, error) {
	addr := net.JoinHostPort("127.0.0.1", fmt.Sprint(lockPort(key)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w (lock %s for %s): %v", ErrAlreadyRunning, addr, key, err)
	}
	return &Lock{ln: ln}, nil
}

// Addr reports the bound lock address, or "" for a nil or released lock.
func (l *Lock) Addr() string {
	if l == nil || l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *Lock) Release() error {
	if l == nil || l.ln == nil {
		return nil
	}
	err := l.ln.Close()
	l.ln = nil
	return err
}

func lockPort(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return lockPortBase + int(h.Sum32()%lockPortCount)
}

package tablefsm

import (
	"bytes"
	"runtime"
	"strconv"
)

// lock takes the machine's locker and returns the matching unlock. It does
// not lock when there is no locker, or when the calling goroutine already
// holds it: that is an event method called from a callback, which the
// dispatch then reports as FaultNestedExternal.
func (m *Machine) lock() (unlock func()) {
	if m.locker == nil {
		return func() {}
	}
	id := goroutineID()
	if m.lockOwner.Load() == id {
		return func() {}
	}

	m.locker.Lock()
	m.lockOwner.Store(id)
	return func() {
		m.lockOwner.Store(0)
		m.locker.Unlock()
	}
}

// goroutineID parses the calling goroutine's ID from its stack header,
// "goroutine 42 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

package cache

import (
	"sync"
	"unsafe"
)

// lockTwo acquires both mutexes in a deterministic order derived from
// their addresses, not from argument position, so that two goroutines
// racing to Swap(a, b) and Swap(b, a) can never deadlock against each
// other. Go has no object-identity total order beyond pointer value
// comparison, so that's what this uses — the same trick the standard
// library reaches for when it needs to order otherwise-unordered locks.
func lockTwo(a, b *sync.Mutex) {
	pa := uintptr(unsafe.Pointer(a))
	pb := uintptr(unsafe.Pointer(b))
	if pa == pb {
		a.Lock()
		return
	}
	if pa < pb {
		a.Lock()
		b.Lock()
		return
	}
	b.Lock()
	a.Lock()
}

func unlockTwo(a, b *sync.Mutex) {
	if a == b {
		a.Unlock()
		return
	}
	a.Unlock()
	b.Unlock()
}

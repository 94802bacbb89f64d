package cpu

// NumKeys is the size of the hexadecimal keypad.
const NumKeys = 16

// Keypad is the state of the 16 key lines, index = key value.
type Keypad [NumKeys]bool

// Lowest returns the lowest-numbered pressed key.
func (k Keypad) Lowest() (byte, bool) {
	for i, down := range k {
		if down {
			return byte(i), true
		}
	}
	return 0, false
}

// Any reports whether any key is pressed.
func (k Keypad) Any() bool {
	_, ok := k.Lowest()
	return ok
}

// Pressed reports whether key is down. Values above 0xF never are.
func (k Keypad) Pressed(key byte) bool {
	return int(key) < NumKeys && k[key]
}

// keyLatch is the single pending "wait for key" request set by Fx0A.
type keyLatch struct {
	pending bool
	dest    uint8
}

func (l *keyLatch) set(dest uint8) {
	l.pending = true
	l.dest = dest
}

// resolve stores the lowest pressed key into v[dest] and clears the latch.
func (l *keyLatch) resolve(keys Keypad, v *[NumRegisters]byte) bool {
	key, ok := keys.Lowest()
	if !ok {
		return false
	}
	v[l.dest] = key
	*l = keyLatch{}
	return true
}

package index

// IgnoreList is a FIFO list of ids excluded from query results. The zero
// value is an empty, unbounded list. Engines embed it to share the ignore
// primitives of the Engine contract.
type IgnoreList struct {
	capacity int
	queue    []string
	head     int
	counts   map[string]int
}

// SetIgnoreCapacity bounds the list to n entries (0 means unbounded),
// evicting the oldest entries that no longer fit.
func (l *IgnoreList) SetIgnoreCapacity(n int) {
	if n < 0 {
		n = 0
	}
	l.capacity = n
	l.trim()
}

// IgnoreCapacity returns the configured bound.
func (l *IgnoreList) IgnoreCapacity() int { return l.capacity }

// AddIgnore appends id, evicting the oldest entry when the bound is exceeded.
func (l *IgnoreList) AddIgnore(id string) {
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.queue = append(l.queue, id)
	l.counts[id]++
	l.trim()
}

// IgnoreSize returns the number of entries.
func (l *IgnoreList) IgnoreSize() int { return len(l.queue) - l.head }

// PopIgnore removes the oldest entry; no-op when the list is empty.
func (l *IgnoreList) PopIgnore() {
	if l.IgnoreSize() == 0 {
		return
	}
	id := l.queue[l.head]
	l.queue[l.head] = ""
	l.head++
	if c := l.counts[id]; c <= 1 {
		delete(l.counts, id)
	} else {
		l.counts[id] = c - 1
	}
	if l.head == len(l.queue) {
		l.queue = l.queue[:0]
		l.head = 0
	} else if l.head >= 32 && l.head*2 >= len(l.queue) {
		n := copy(l.queue, l.queue[l.head:])
		l.queue = l.queue[:n]
		l.head = 0
	}
}

// Ignored reports whether id is on the list.
func (l *IgnoreList) Ignored(id string) bool {
	return l.counts[id] > 0
}

// IgnoredIDs returns the entries oldest first.
func (l *IgnoreList) IgnoredIDs() []string {
	return append([]string(nil), l.queue[l.head:]...)
}

func (l *IgnoreList) trim() {
	if l.capacity == 0 {
		return
	}
	for l.IgnoreSize() > l.capacity {
		l.PopIgnore()
	}
}

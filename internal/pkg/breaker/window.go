package breaker

type outcome uint8

const (
	outcomeFailed outcome = 1 << iota
	outcomeSlow
)

// window is a fixed-size ring of the most recent call outcomes.
type window struct {
	buf    []outcome
	next   int
	size   int
	failed int
	slow   int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]outcome, capacity)}
}

func (w *window) add(o outcome) {
	if w.size == len(w.buf) {
		w.count(w.buf[w.next], -1)
	} else {
		w.size++
	}

	w.buf[w.next] = o
	w.count(o, 1)
	w.next = (w.next + 1) % len(w.buf)
}

func (w *window) count(o outcome, delta int) {
	if o&outcomeFailed != 0 {
		w.failed += delta
	}
	if o&outcomeSlow != 0 {
		w.slow += delta
	}
}

func (w *window) reset() {
	clear(w.buf)
	w.next, w.size, w.failed, w.slow = 0, 0, 0, 0
}

func (w *window) failureRate() float64 {
	if w.size == 0 {
		return 0
	}
	return float64(w.failed) * 100 / float64(w.size)
}

func (w *window) slowRate() float64 {
	if w.size == 0 {
		return 0
	}
	return float64(w.slow) * 100 / float64(w.size)
}

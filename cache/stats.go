package cache

// rollingStats tracks a fixed-size window of per-lookup hit/byte-hit
// samples, the Go substitute for the C++ original's boost::accumulators
// rolling_mean (no rolling-statistics library appears anywhere in the
// example pack; a ring buffer is the standard idiomatic replacement).
type rollingStats struct {
	window     []sample
	size       uint32
	next       int
	count      int
	hitSum     uint64
	byteHitSum uint64
}

type sample struct {
	hit     uint64 // 0 or 1
	byteHit uint64 // 0 or value_size
}

func newRollingStats(windowSize uint32) *rollingStats {
	if windowSize == 0 {
		windowSize = 1
	}
	return &rollingStats{
		window: make([]sample, windowSize),
		size:   windowSize,
	}
}

// record pushes a new sample into the window, evicting the oldest sample
// once the window is full.
func (r *rollingStats) record(hit bool, valueSize uint64) {
	var s sample
	if hit {
		s.hit = 1
		s.byteHit = valueSize
	}

	if r.count == int(r.size) {
		old := r.window[r.next]
		r.hitSum -= old.hit
		r.byteHitSum -= old.byteHit
	} else {
		r.count++
	}

	r.window[r.next] = s
	r.hitSum += s.hit
	r.byteHitSum += s.byteHit
	r.next = (r.next + 1) % int(r.size)
}

// hitRate returns the mean hit value (0/1) over the current window.
func (r *rollingStats) hitRate() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.hitSum) / float64(r.count)
}

// byteHitRate returns the mean bytes-saved value over the current window.
func (r *rollingStats) byteHitRate() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.byteHitSum) / float64(r.count)
}

// reset clears all recorded samples, used by Clear and resize.
func (r *rollingStats) reset() {
	for i := range r.window {
		r.window[i] = sample{}
	}
	r.next = 0
	r.count = 0
	r.hitSum = 0
	r.byteHitSum = 0
}

// resize changes the window length, discarding all prior samples — the
// same behavior as Clear's reset, since a differently-sized window can't
// meaningfully reuse the old samples.
func (r *rollingStats) resize(windowSize uint32) {
	if windowSize == 0 {
		windowSize = 1
	}
	r.size = windowSize
	r.window = make([]sample, windowSize)
	r.reset()
}

package common

// CircularBuffer is a fixed-capacity FIFO of float64 values. Pushing into a
// full buffer overwrites the oldest value. Storage is allocated once.
type CircularBuffer struct {
	buffer   []float64
	size     int
	writePos int
	readPos  int
	count    int
}

// NewCircularBuffer creates a new circular buffer. Sizes below 1 are clamped
// to 1.
func NewCircularBuffer(size int) *CircularBuffer {
	if size < 1 {
		size = 1
	}
	return &CircularBuffer{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Push appends a value, evicting the oldest one when the buffer is full.
// It reports whether a value was evicted.
func (cb *CircularBuffer) Push(value float64) bool {
	cb.buffer[cb.writePos] = value
	cb.writePos = (cb.writePos + 1) % cb.size

	if cb.count < cb.size {
		cb.count++
		return false
	}

	// full: the slot we just overwrote was the oldest
	cb.readPos = (cb.readPos + 1) % cb.size
	return true
}

// Peek copies up to len(data) values, oldest first, without consuming them.
func (cb *CircularBuffer) Peek(data []float64) int {
	read := 0
	pos := cb.readPos
	remaining := cb.count

	for i := range data {
		if remaining == 0 {
			break
		}
		data[i] = cb.buffer[pos]
		pos = (pos + 1) % cb.size
		remaining--
		read++
	}
	return read
}

// At returns the i-th value counted from the oldest one.
func (cb *CircularBuffer) At(i int) (float64, bool) {
	if i < 0 || i >= cb.count {
		return 0, false
	}
	return cb.buffer[(cb.readPos+i)%cb.size], true
}

// Available returns the number of values held
func (cb *CircularBuffer) Available() int {
	return cb.count
}

// Clear empties the buffer
func (cb *CircularBuffer) Clear() {
	cb.writePos = 0
	cb.readPos = 0
	cb.count = 0
}

// Framer regroups arbitrarily sized chunks of samples into frames of a fixed
// length. Capture callbacks rarely deliver exactly one analysis frame.
type Framer struct {
	buffer    []float64
	frameSize int
	hopSize   int
	writePos  int
}

// NewFramer creates a framer. A hopSize of 0 or >= frameSize means
// consecutive frames do not overlap.
func NewFramer(frameSize, hopSize int) *Framer {
	if frameSize < 1 {
		frameSize = 1
	}
	if hopSize <= 0 || hopSize > frameSize {
		hopSize = frameSize
	}
	return &Framer{
		buffer:    make([]float64, frameSize),
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// AddSamples appends samples and calls emit for every completed frame. The
// slice passed to emit is reused; emit must not retain it.
func (f *Framer) AddSamples(samples []float64, emit func(frame []float64)) int {
	emitted := 0
	for _, sample := range samples {
		f.buffer[f.writePos] = sample
		f.writePos++

		if f.writePos < f.frameSize {
			continue
		}

		emit(f.buffer)
		emitted++

		if f.hopSize < f.frameSize {
			copy(f.buffer, f.buffer[f.hopSize:])
			f.writePos = f.frameSize - f.hopSize
		} else {
			f.writePos = 0
		}
	}
	return emitted
}

// Pending returns how many samples are waiting for the next frame.
func (f *Framer) Pending() int {
	return f.writePos
}

// Reset drops pending samples
func (f *Framer) Reset() {
	f.writePos = 0
	for i := range f.buffer {
		f.buffer[i] = 0.0
	}
}

// FrameSize returns the frame length
func (f *Framer) FrameSize() int {
	return f.frameSize
}

// HopSize returns the hop size
func (f *Framer) HopSize() int {
	return f.hopSize
}

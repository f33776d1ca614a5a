package gaze

// minInterval is the smallest timestamp difference accepted as a new rate.
const minInterval = 1e-6

// FrequencyEstimator estimates the gaze rate from the last two timestamps.
type FrequencyEstimator struct {
	prev, last float64
	n          int
	hz         float64
}

// Add records a timestamp and returns the current estimate in Hz.
// Differences at or below a microsecond keep the previous estimate.
func (f *FrequencyEstimator) Add(ts float64) float64 {
	f.prev, f.last = f.last, ts
	if f.n < 2 {
		f.n++
	}
	if f.n == 2 {
		if dt := f.last - f.prev; dt > minInterval {
			f.hz = 1.0 / dt
		}
	}
	return f.hz
}

// Hz returns the last valid estimate, 0 before two samples.
func (f *FrequencyEstimator) Hz() float64 {
	return f.hz
}

// Last returns the most recent timestamp and whether one was seen.
func (f *FrequencyEstimator) Last() (float64, bool) {
	return f.last, f.n > 0
}

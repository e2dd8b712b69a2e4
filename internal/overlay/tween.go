package overlay

import "time"

// tween interpolates a value between from and to over dur with ease-out.
type tween struct {
	from, to float64
	start    time.Time
	dur      time.Duration
}

func settled(v float64) tween {
	return tween{from: v, to: v}
}

func (t tween) at(now time.Time) float64 {
	if t.dur <= 0 || t.from == t.to {
		return t.to
	}
	elapsed := now.Sub(t.start)
	if elapsed >= t.dur {
		return t.to
	}
	if elapsed <= 0 {
		return t.from
	}
	f := float64(elapsed) / float64(t.dur)
	return t.from + (t.to-t.from)*easeOutCubic(f)
}

func (t tween) done(now time.Time) bool {
	return t.from == t.to || t.dur <= 0 || now.Sub(t.start) >= t.dur
}

// retarget starts a new animation toward to from the current value.
func (t *tween) retarget(to float64, now time.Time, dur time.Duration) {
	if t.to == to {
		return
	}
	t.from = t.at(now)
	t.to = to
	t.start = now
	t.dur = dur
}

func easeOutCubic(f float64) float64 {
	f = 1 - f
	return 1 - f*f*f
}

package types

// FrameRange is the integer frame-range triple of a pass
type FrameRange struct {
	Start int
	End   int
	Step  int
}

// Contains reports whether frame belongs to the range. A frame belongs
// iff it is reachable from Start in Step increments without exceeding End.
// A non-positive Step is treated as 1.
func (r FrameRange) Contains(frame int) bool {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	if frame < r.Start || frame > r.End {
		return false
	}
	return (frame-r.Start)%step == 0
}

// Frames returns every frame in the range, in order
func (r FrameRange) Frames() []int {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	var frames []int
	for f := r.Start; f <= r.End; f += step {
		frames = append(frames, f)
	}
	return frames
}

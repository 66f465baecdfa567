package diarize

// accumulatorState is the state of an Accumulator.
type accumulatorState int

const (
	// stateIdle means no run is open.
	stateIdle accumulatorState = iota
	// stateAccumulating means a run of one label is open.
	stateAccumulating
)

// run collects duration-weighted statistics for consecutive frames that
// share a label.
type run struct {
	label            Label
	startSample      int
	endSample        int
	energySum        float64
	confidenceSum    float64
	channelEnergySum [2]float64
	duration         float64
}

func (r *run) add(f Frame, confidence float64) {
	r.energySum += f.OverallRMS * f.Duration
	r.confidenceSum += confidence * f.Duration
	for i := range r.channelEnergySum {
		r.channelEnergySum[i] += f.ChannelRMS[i] * f.Duration
	}
	r.duration += f.Duration
	r.endSample = f.End
}

func (r *run) segment(sampleRate int) Segment {
	seg := Segment{
		Label:       r.label,
		AvgLevel:    r.energySum / r.duration,
		Confidence:  clamp01(r.confidenceSum / r.duration),
		StartSample: r.startSample,
		EndSample:   r.endSample,
	}
	for i := range seg.ChannelLevel {
		seg.ChannelLevel[i] = r.channelEnergySum[i] / r.duration
	}
	if sampleRate > 0 {
		seg.Start = float64(r.startSample) / float64(sampleRate)
		seg.End = float64(r.endSample) / float64(sampleRate)
	}
	return seg
}

// Accumulator turns a stream of classified frames into contiguous segments.
//
// State transitions:
//
//	Idle ──Add──▶ Accumulating(label)
//	Accumulating(a) ──Add(a)──▶ Accumulating(a)
//	Accumulating(a) ──Add(b)──▶ flush, Accumulating(b)
//	any ──Finish──▶ flush, Idle
//
// A flushed run whose label matches the last emitted segment is merged into
// it with duration-weighted levels. A run shorter than the minimum segment
// length is absorbed into the last emitted segment by extending its end.
// Otherwise the run becomes a new segment. Absorption does not look at the
// short run's own label, so a brief overlap or silence between two turns of
// one speaker disappears into that speaker's segment. The same holds for a
// short run of the other speaker: a trailing partial frame of speaker B after
// speaker A is relabelled as A, and B's audio in that span is not exported.
type Accumulator struct {
	sampleRate        int
	minSegmentSeconds float64

	state    accumulatorState
	current  run
	segments []Segment
}

// NewAccumulator creates an idle Accumulator.
func NewAccumulator(sampleRate int, minSegmentSeconds float64) *Accumulator {
	return &Accumulator{
		sampleRate:        sampleRate,
		minSegmentSeconds: minSegmentSeconds,
		segments:          make([]Segment, 0),
	}
}

// Add feeds one classified frame.
func (a *Accumulator) Add(f Frame, label Label, confidence float64) {
	if a.state == stateIdle || a.current.label != label {
		a.flush()
		a.current = run{label: label, startSample: f.Start, endSample: f.Start}
		a.state = stateAccumulating
	}
	a.current.add(f, confidence)
}

// Finish flushes the open run and returns the segments.
// The Accumulator must not be used afterwards.
func (a *Accumulator) Finish() []Segment {
	a.flush()
	return a.segments
}

func (a *Accumulator) flush() {
	if a.state == stateIdle {
		return
	}
	a.state = stateIdle
	if a.current.duration <= 0 {
		return
	}

	seg := a.current.segment(a.sampleRate)
	if n := len(a.segments); n > 0 {
		prev := &a.segments[n-1]
		if prev.Label == seg.Label {
			prev.mergeWeighted(seg)
			return
		}
		if seg.Duration() < a.minSegmentSeconds {
			prev.extendTo(seg)
			return
		}
	}
	a.segments = append(a.segments, seg)
}

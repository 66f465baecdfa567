package diarize

// Label identifies who is active during a segment.
type Label string

const (
	// SpeakerA is the speaker recorded on the left channel.
	SpeakerA Label = "speaker_1"
	// SpeakerB is the speaker recorded on the right channel.
	SpeakerB Label = "speaker_2"
	// Overlap marks both speakers talking at once.
	Overlap Label = "overlap"
	// Silence marks neither speaker talking.
	Silence Label = "silence"
)

// activates reports whether the label keeps channel ch in its exported track.
func (l Label) activates(ch int) bool {
	switch l {
	case Overlap:
		return true
	case SpeakerA:
		return ch == 0
	case SpeakerB:
		return ch == 1
	default:
		return false
	}
}

// Segment is a time interval carrying a single label.
type Segment struct {
	Label Label `json:"speaker" yaml:"speaker"`
	// Start and End are in seconds.
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	// AvgLevel is the duration-weighted overall RMS.
	AvgLevel float64 `json:"avg_level" yaml:"avg_level"`
	// Confidence is the duration-weighted frame confidence in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// ChannelLevel is the duration-weighted RMS of the left and right channels.
	ChannelLevel [2]float64 `json:"channel_level" yaml:"channel_level,flow"`
	// StartSample and EndSample are the frame indices backing Start and End.
	StartSample int `json:"start_sample" yaml:"start_sample"`
	EndSample   int `json:"end_sample" yaml:"end_sample"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// mergeWeighted folds next into s, averaging levels by duration.
func (s *Segment) mergeWeighted(next Segment) {
	prevDur, nextDur := s.Duration(), next.Duration()
	if total := prevDur + nextDur; total > 0 {
		s.AvgLevel = (s.AvgLevel*prevDur + next.AvgLevel*nextDur) / total
		s.Confidence = clamp01((s.Confidence*prevDur + next.Confidence*nextDur) / total)
		for i := range s.ChannelLevel {
			s.ChannelLevel[i] = (s.ChannelLevel[i]*prevDur + next.ChannelLevel[i]*nextDur) / total
		}
	}
	s.extendTo(next)
}

// extendTo moves the end of s to the end of next without touching its levels.
func (s *Segment) extendTo(next Segment) {
	s.End = next.End
	s.EndSample = next.EndSample
}

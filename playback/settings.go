package playback

import "time"

// Rates is the fixed set of supported playback speeds.
var Rates = []float64{0.5, 0.8, 1.0, 1.2, 1.5, 2.0, 3.0}

// StreamMode describes the live status of the current item.
type StreamMode int

const (
	StreamNone StreamMode = iota
	StreamLive
	StreamPast
	StreamEnded
)

// String returns the stream mode name.
func (m StreamMode) String() string {
	switch m {
	case StreamNone:
		return "none"
	case StreamLive:
		return "live"
	case StreamPast:
		return "past"
	case StreamEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// VideoQuality selects the preferred video rendition.
type VideoQuality int

const (
	QualityAuto VideoQuality = iota
	QualityLow
	QualityHigh
)

// Settings carries the session playback preferences. They survive item
// changes within a session and reset to defaults on Close.
type Settings struct {
	Speed          float64
	ForwardLength  time.Duration
	BackwardLength time.Duration
	StreamMode     StreamMode
	VideoQuality   VideoQuality
}

// DefaultSettings returns the session defaults.
func DefaultSettings() Settings {
	return Settings{
		Speed:          1.0,
		ForwardLength:  30 * time.Second,
		BackwardLength: 15 * time.Second,
		StreamMode:     StreamNone,
		VideoQuality:   QualityAuto,
	}
}

// NearestRate snaps an arbitrary speed to the closest supported rate.
func NearestRate(speed float64) float64 {
	best := Rates[0]
	for _, r := range Rates[1:] {
		if abs(r-speed) < abs(best-speed) {
			best = r
		}
	}
	return best
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Audio is the audio-only engine variant, built on the beep pipeline.
// Remote sources are fetched to a temporary file first so the decoded
// stream stays seekable.
type Audio struct {
	track *tracker
	src   Source

	mu        sync.Mutex
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	file      *os.File
	tempPath  string
	loadGen   int
	stopped   bool
}

// The speaker is process-wide state: it is initialized once at the
// first track's sample rate and later tracks are converted to it.
var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerRate        beep.SampleRate
)

// conform converts a decoded stream to the speaker's sample rate.
func conform(s beep.Streamer, from, to beep.SampleRate) beep.Streamer {
	if from == to {
		return s
	}
	return beep.Resample(4, from, to, s)
}

// NewAudio creates an audio engine for the source. Media is not touched
// until PlayAt.
func NewAudio(src Source, onState StateFunc) *Audio {
	return &Audio{
		track: newTracker(src.Rate, onState),
		src:   src,
	}
}

// PlayAt loads the media and starts playback at the given position.
// With forceResume set and media already loaded, it resumes instead of
// reloading.
func (a *Audio) PlayAt(pos time.Duration, forceResume bool) bool {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return false
	}
	if a.streamer != nil {
		a.mu.Unlock()
		if forceResume {
			return a.Resume()
		}
		return a.SeekTo(pos)
	}
	a.loadGen++
	gen := a.loadGen
	a.mu.Unlock()

	go a.load(gen, pos)
	return true
}

func (a *Audio) load(gen int, pos time.Duration) {
	a.track.set(StateWaiting)

	f, tempPath, err := a.openSource()
	if err != nil {
		a.track.fail(err)
		return
	}

	streamer, format, err := decode(f, a.sourcePath())
	if err != nil {
		f.Close()
		if tempPath != "" {
			os.Remove(tempPath)
		}
		a.track.fail(fmt.Errorf("decode: %w", err))
		return
	}

	a.mu.Lock()
	if a.stopped || gen != a.loadGen {
		a.mu.Unlock()
		streamer.Close()
		f.Close()
		if tempPath != "" {
			os.Remove(tempPath)
		}
		return
	}

	speakerMu.Lock()
	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			speakerMu.Unlock()
			a.mu.Unlock()
			streamer.Close()
			f.Close()
			if tempPath != "" {
				os.Remove(tempPath)
			}
			a.track.fail(fmt.Errorf("audio output: %w", err))
			return
		}
		speakerRate = format.SampleRate
		speakerInitialized = true
	}
	outRate := speakerRate
	speakerMu.Unlock()

	a.streamer = streamer
	a.format = format
	a.file = f
	a.tempPath = tempPath
	a.ctrl = &beep.Ctrl{Streamer: conform(streamer, format.SampleRate, outRate)}
	a.resampler = beep.ResampleRatio(4, a.track.rateValue(), a.ctrl)
	a.mu.Unlock()

	a.track.set(StateReady)

	if pos > 0 {
		a.SeekTo(pos)
	}

	speaker.Play(beep.Seq(a.resampler, beep.Callback(func() {
		a.mu.Lock()
		stopped := a.stopped
		a.mu.Unlock()
		if !stopped {
			a.track.set(StateEnded)
		}
	})))

	a.track.set(StatePlaying)
}

// Resume resumes paused playback.
func (a *Audio) Resume() bool {
	a.mu.Lock()
	if a.ctrl == nil || a.track.current() != StatePaused {
		a.mu.Unlock()
		return false
	}
	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()
	a.mu.Unlock()

	a.track.set(StatePlaying)
	return true
}

// Pause pauses playback.
func (a *Audio) Pause() bool {
	a.mu.Lock()
	if a.ctrl == nil || a.track.current() != StatePlaying {
		a.mu.Unlock()
		return false
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
	a.mu.Unlock()

	a.track.set(StatePaused)
	return true
}

// Stop tears the engine down and releases the audio pipeline. The
// engine cannot be reused afterwards.
func (a *Audio) Stop() bool {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return true
	}
	a.stopped = true
	a.loadGen++

	if a.streamer != nil {
		speaker.Clear()
		a.streamer.Close()
		a.streamer = nil
	}
	if a.file != nil {
		a.file.Close()
		a.file = nil
	}
	if a.tempPath != "" {
		os.Remove(a.tempPath)
		a.tempPath = ""
	}
	a.ctrl = nil
	a.resampler = nil
	a.mu.Unlock()

	a.track.set(StateIdle)
	return true
}

// SeekTo moves playback to an absolute position.
func (a *Audio) SeekTo(pos time.Duration) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return false
	}

	sample := a.format.SampleRate.N(pos)
	if sample < 0 {
		sample = 0
	}
	if n := a.streamer.Len(); sample >= n {
		sample = n - 1
	}

	speaker.Lock()
	err := a.streamer.Seek(sample)
	speaker.Unlock()
	return err == nil
}

// CurrentTime returns the current playback position.
func (a *Audio) CurrentTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Position())
}

// TotalDuration returns the media duration.
func (a *Audio) TotalDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Len())
}

// HasVideo reports false: this variant has no visual surface.
func (a *Audio) HasVideo() bool { return false }

// Rate returns the playback speed.
func (a *Audio) Rate() float64 { return a.track.rateValue() }

// SetRate changes the playback speed of the live pipeline.
func (a *Audio) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	a.track.setRateValue(rate)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resampler == nil {
		return
	}
	speaker.Lock()
	a.resampler.SetRatio(rate)
	speaker.Unlock()
}

func (a *Audio) sourcePath() string {
	if a.src.File != "" {
		return a.src.File
	}
	return a.src.URL
}

// openSource returns a seekable file for the source, downloading remote
// media to a temp file. The second return is the temp path to clean up,
// empty for local files.
func (a *Audio) openSource() (*os.File, string, error) {
	if a.src.File != "" {
		f, err := os.Open(a.src.File)
		if err != nil {
			return nil, "", fmt.Errorf("open media: %w", err)
		}
		return f, "", nil
	}

	resp, err := http.Get(a.src.URL)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch media: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "castkit-media-*"+strings.ToLower(filepath.Ext(a.src.URL)))
	if err != nil {
		return nil, "", fmt.Errorf("temp media file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", fmt.Errorf("fetch media: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, "", err
	}
	return tmp, tmp.Name(), nil
}

func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", "":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

// Verify Audio implements Engine at compile time.
var _ Engine = (*Audio)(nil)

package media

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

const msgVideoFailed = "This video could not be played. Please try again later."

// PlaybackSpeeds is the fixed set of selectable speeds.
var PlaybackSpeeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

type VideoPhase int

const (
	VideoLoading VideoPhase = iota
	VideoReady
	VideoFailed // terminal for the current source
)

func (p VideoPhase) String() string {
	switch p {
	case VideoLoading:
		return "loading"
	case VideoReady:
		return "ready"
	case VideoFailed:
		return "failed"
	}
	return "unknown"
}

// VideoView is the render model of a video surface.
type VideoView struct {
	Phase            string        `json:"phase"`
	Source           string        `json:"source"`
	Poster           string        `json:"poster,omitempty"`
	MimeType         string        `json:"mimeType,omitempty"`
	Autoplay         bool          `json:"autoplay"`
	ShowLoading      bool          `json:"showLoading"`
	ShowControls     bool          `json:"showControls"`
	Error            string        `json:"error,omitempty"`
	Playing          bool          `json:"playing"`
	Position         time.Duration `json:"position"`
	Duration         time.Duration `json:"duration"`
	Volume           float64       `json:"volume"`
	Muted            bool          `json:"muted"`
	Speed            float64       `json:"speed"`
	Speeds           []float64     `json:"speeds,omitempty"`
	PictureInPicture bool          `json:"pictureInPicture"`
	Fullscreen       bool          `json:"fullscreen"`
}

// Video tracks one video surface. The fallback URL of the descriptor is
// carried but never switched to.
type Video struct {
	mu     sync.Mutex
	desc   content.AccessDescriptor
	opts   Options
	source string
	phase  VideoPhase
	err    error
	closed bool

	playing    bool
	position   time.Duration
	duration   time.Duration
	volume     float64
	muted      bool
	speed      float64
	pip        bool
	fullscreen bool
}

func NewVideo(desc content.AccessDescriptor, opts Options) (*Video, error) {
	if desc.Kind != content.KindVideo {
		return nil, perrors.Wrapf(perrors.ErrUnsupportedContent, "video presenter for kind %q", desc.Kind)
	}
	v := &Video{desc: desc, opts: opts}
	v.load(desc.URL)
	return v, nil
}

func (v *Video) Kind() content.Kind                   { return content.KindVideo }
func (v *Video) Descriptor() content.AccessDescriptor { return v.desc }

// SetSource switches the primary locator. A different URL restarts loading
// and clears any error.
func (v *Video) SetSource(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if url == v.source || v.closed {
		return
	}
	v.load(url)
}

// Ready is the player's signal that the source can play.
func (v *Video) Ready(duration time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.phase != VideoLoading {
		return
	}
	v.phase = VideoReady
	v.duration = max(duration, 0)
	v.playing = v.opts.Autoplay
}

// Fail records a player error. The surface stays failed until the source
// changes.
func (v *Video) Fail(cause error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.phase == VideoFailed {
		return
	}
	if cause == nil {
		cause = perrors.ErrPlayback
	}
	v.phase = VideoFailed
	v.err = &PlaybackError{Message: msgVideoFailed, err: fmt.Errorf("%w: %w", perrors.ErrPlayback, cause)}
	v.playing, v.pip, v.fullscreen = false, false, false
}

// Err returns the playback failure, if any.
func (v *Video) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *Video) Phase() VideoPhase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// TimeUpdate records the playback position reported by the player.
func (v *Video) TimeUpdate(position time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase == VideoReady {
		v.position = v.clamp(position)
	}
}

// Ended is reported when playback reaches the end.
func (v *Video) Ended() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase == VideoReady {
		v.playing = false
		v.position = v.duration
	}
}

func (v *Video) Play() error {
	return v.control(func() error { v.playing = true; return nil })
}

func (v *Video) Pause() error {
	return v.control(func() error { v.playing = false; return nil })
}

func (v *Video) TogglePlay() error {
	return v.control(func() error { v.playing = !v.playing; return nil })
}

// Seek moves to position, clamped to [0, duration].
func (v *Video) Seek(position time.Duration) error {
	return v.control(func() error { v.position = v.clamp(position); return nil })
}

// SetVolume sets the volume, clamped to [0, 1]. A positive volume unmutes.
func (v *Video) SetVolume(volume float64) error {
	return v.control(func() error {
		v.volume = min(max(volume, 0), 1)
		v.muted = v.volume == 0
		return nil
	})
}

func (v *Video) ToggleMute() error {
	return v.control(func() error { v.muted = !v.muted; return nil })
}

// SetSpeed selects one of PlaybackSpeeds.
func (v *Video) SetSpeed(speed float64) error {
	return v.control(func() error {
		if !slices.Contains(PlaybackSpeeds, speed) {
			return perrors.Wrapf(perrors.ErrUnsupportedSpeed, "%vx", speed)
		}
		v.speed = speed
		return nil
	})
}

func (v *Video) TogglePictureInPicture() error {
	return v.control(func() error { v.pip = !v.pip; return nil })
}

func (v *Video) ToggleFullscreen() error {
	return v.control(func() error { v.fullscreen = !v.fullscreen; return nil })
}

func (v *Video) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.playing, v.pip, v.fullscreen = false, false, false
}

func (v *Video) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	vv := &VideoView{
		Phase:       v.phase.String(),
		Source:      v.source,
		Poster:      v.desc.Thumbnail,
		MimeType:    v.mimeType(),
		Autoplay:    v.opts.Autoplay,
		ShowLoading: v.phase == VideoLoading,
	}
	switch v.phase {
	case VideoReady:
		vv.ShowControls = v.opts.Controls
		vv.Playing = v.playing
		vv.Position = v.position
		vv.Duration = v.duration
		vv.Volume = v.volume
		vv.Muted = v.muted
		vv.Speed = v.speed
		vv.Speeds = PlaybackSpeeds
		vv.PictureInPicture = v.pip
		vv.Fullscreen = v.fullscreen
	case VideoFailed:
		vv.Error = perrors.UserMessage(v.err, msgVideoFailed)
	}
	return View{Kind: content.KindVideo, Video: vv}
}

// load resets the sub-state for url. Callers hold mu or own v exclusively.
func (v *Video) load(url string) {
	v.source = url
	v.phase = VideoLoading
	v.err = nil
	v.playing, v.pip, v.fullscreen = false, false, false
	v.position, v.duration = 0, 0
	v.volume, v.muted, v.speed = 1, false, 1
}

func (v *Video) control(apply func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.phase != VideoReady || !v.opts.Controls {
		return perrors.Wrapf(perrors.ErrControlsDisabled, "video is %s", v.phase)
	}
	return apply()
}

func (v *Video) clamp(d time.Duration) time.Duration {
	return min(max(d, 0), v.duration)
}

func (v *Video) mimeType() string {
	if v.opts.MimeType != "" {
		return v.opts.MimeType
	}
	if v.desc.MimeType != "" {
		return v.desc.MimeType
	}
	return mimeFromURL(v.source)
}

func mimeFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".ogv", ".ogg":
		return "video/ogg"
	case ".m3u8":
		return "application/x-mpegURL"
	case ".mpd":
		return "application/dash+xml"
	}
	return ""
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-learning-portal/async"
	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/internal/validation"
	"github.com/jrsteele09/go-learning-portal/media"
)

const (
	msgContentFailed = "Unable to load this content."
	msgNoMediaOpen   = "This content is not open."
)

type DashboardView struct {
	View    string      `json:"view"`
	Path    string      `json:"path"`
	Session SessionView `json:"session"`
}

type ContentView struct {
	Ref    content.Ref `json:"ref"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Media  *media.View `json:"media,omitempty"`
}

type PlayerEvent struct {
	Event    string  `json:"event" validate:"required,oneof=ready error timeupdate ended play pause toggle seek volume mute speed pip fullscreen source"`
	Duration float64 `json:"duration"` // seconds
	Position float64 `json:"position"` // seconds
	Volume   float64 `json:"volume"`
	Speed    float64 `json:"speed"`
	URL      string  `json:"url" validate:"required_if=Event source"`
	Message  string  `json:"message"`
}

type DocumentEvent struct {
	Event     string `json:"event" validate:"required,oneof=loaded error next prev goto"`
	PageCount int    `json:"pageCount"`
	Page      int    `json:"page"`
	Message   string `json:"message"`
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		writeJSON(w, http.StatusOK, DashboardView{
			View:    "dashboard",
			Path:    r.URL.Path,
			Session: newSessionView(v.Session()),
		})
	}
}

func refFromPath(r *http.Request) content.Ref {
	return content.Ref{
		CourseID:  r.PathValue("courseId"),
		ModuleID:  r.PathValue("moduleId"),
		ContentID: r.PathValue("contentId"),
	}
}

// optionsFromQuery reads the presenter overrides: controls, autoplay, mime.
func optionsFromQuery(r *http.Request) media.Options {
	opts := media.DefaultOptions()
	q := r.URL.Query()
	if b, err := strconv.ParseBool(q.Get("controls")); err == nil {
		opts.Controls = b
	}
	if b, err := strconv.ParseBool(q.Get("autoplay")); err == nil {
		opts.Autoplay = b
	}
	opts.MimeType = q.Get("mime")
	return opts
}

// ContentViewHandler resolves the content for the path and returns the
// presenter view. Access failures are part of the view, not an HTTP error.
func (s *Server) ContentViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		ref := refFromPath(r)

		state, err := v.gateway.Resolve(r.Context(), ref)
		switch {
		case errors.Is(err, perrors.ErrSuperseded):
			writeError(w, http.StatusConflict, "This content view was replaced by a newer one.")
			return
		case errors.Is(err, perrors.ErrInvalidInput):
			writeFailure(w, err, msgBadRequest)
			return
		case err != nil:
			writeFailure(w, err, msgContentFailed)
			return
		}

		view := ContentView{Ref: ref, Status: state.Status().String()}
		desc, ok := state.Value()
		if !ok {
			v.closePresenter()
			if state.Status() == async.Failure {
				view.Error = perrors.UserMessage(state.Err(), msgContentFailed)
			}
			writeJSON(w, http.StatusOK, view)
			return
		}

		p, err := v.present(ref, desc, optionsFromQuery(r))
		if errors.Is(err, perrors.ErrNoSession) || errors.Is(err, perrors.ErrSuperseded) {
			writeFailure(w, err, "This content view was closed.")
			return
		}
		if err != nil {
			view.Status = async.Failure.String()
			view.Error = perrors.UserMessage(err, "This type of content cannot be displayed.")
			writeJSON(w, http.StatusOK, view)
			return
		}
		mv := p.View()
		view.Media = &mv
		writeJSON(w, http.StatusOK, view)
	}
}

// ContentUnmountHandler leaves the content view, cancelling any fetch.
func (s *Server) ContentUnmountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		if cur := v.gateway.View(); cur.Bound && cur.Ref == refFromPath(r) {
			v.unmount()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// PlayerEventHandler applies a player event or control to the open video.
func (s *Server) PlayerEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		p, ok := v.presenterFor(refFromPath(r))
		video, isVideo := p.(*media.Video)
		if !ok || !isVideo {
			writeError(w, http.StatusNotFound, msgNoMediaOpen)
			return
		}
		var ev PlayerEvent
		if err := decodeJSON(w, r, &ev); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		if err := validation.Struct(ev); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		if err := applyPlayerEvent(video, ev); err != nil {
			writeFailure(w, err, "That control is not available right now.")
			return
		}
		writeJSON(w, http.StatusOK, video.View())
	}
}

func applyPlayerEvent(video *media.Video, ev PlayerEvent) error {
	switch ev.Event {
	case "ready":
		video.Ready(seconds(ev.Duration))
	case "error":
		var cause error
		if ev.Message != "" {
			cause = errors.New(ev.Message)
		}
		video.Fail(cause)
	case "timeupdate":
		video.TimeUpdate(seconds(ev.Position))
	case "ended":
		video.Ended()
	case "source":
		video.SetSource(ev.URL)
	case "play":
		return video.Play()
	case "pause":
		return video.Pause()
	case "toggle":
		return video.TogglePlay()
	case "seek":
		return video.Seek(seconds(ev.Position))
	case "volume":
		return video.SetVolume(ev.Volume)
	case "mute":
		return video.ToggleMute()
	case "speed":
		return video.SetSpeed(ev.Speed)
	case "pip":
		return video.TogglePictureInPicture()
	case "fullscreen":
		return video.ToggleFullscreen()
	}
	return nil
}

// DocumentEventHandler applies a viewer event or page navigation to the open
// document.
func (s *Server) DocumentEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		p, ok := v.presenterFor(refFromPath(r))
		doc, isDoc := p.(*media.Document)
		if !ok || !isDoc {
			writeError(w, http.StatusNotFound, msgNoMediaOpen)
			return
		}
		var ev DocumentEvent
		if err := decodeJSON(w, r, &ev); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		if err := validation.Struct(ev); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}

		switch ev.Event {
		case "loaded":
			// A failed load is reported in the view.
			_ = doc.Loaded(ev.PageCount)
		case "error":
			var cause error
			if ev.Message != "" {
				cause = errors.New(ev.Message)
			}
			doc.Fail(cause)
		case "next":
			doc.Next()
		case "prev":
			doc.Prev()
		case "goto":
			doc.GoTo(ev.Page)
		}
		writeJSON(w, http.StatusOK, doc.View())
	}
}

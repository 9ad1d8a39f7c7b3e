// Package media renders a resolved access descriptor as a video or a paged
// document. Presenters keep their own load/error state and never fetch or
// modify the descriptor they were given.
package media

import (
	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

// Options are the only per-view overrides a presenter accepts.
type Options struct {
	Controls bool   `json:"controls"`
	Autoplay bool   `json:"autoplay"`
	MimeType string `json:"mimeType,omitempty"`
}

func DefaultOptions() Options {
	return Options{Controls: true}
}

// View is the render model handed to the rendering layer. Exactly one of
// Video and Document is set.
type View struct {
	Kind     content.Kind  `json:"kind"`
	Video    *VideoView    `json:"video,omitempty"`
	Document *DocumentView `json:"document,omitempty"`
}

type Presenter interface {
	Kind() content.Kind
	Descriptor() content.AccessDescriptor
	View() View
	// Close releases the surface; later player events are ignored.
	Close()
}

var (
	_ Presenter = (*Video)(nil)
	_ Presenter = (*Document)(nil)
)

// New picks the presenter for the descriptor's kind. opts apply to video only.
func New(desc content.AccessDescriptor, opts Options) (Presenter, error) {
	switch desc.Kind {
	case content.KindVideo:
		return NewVideo(desc, opts)
	case content.KindDocument:
		return NewDocument(desc)
	}
	return nil, perrors.Wrapf(perrors.ErrUnsupportedContent, "presenter for kind %q", desc.Kind)
}

// PlaybackError is a failure to render content that was successfully
// resolved. It is distinct from an access failure.
type PlaybackError struct {
	Message string
	err     error
}

func (e *PlaybackError) Error() string       { return e.err.Error() }
func (e *PlaybackError) Unwrap() error       { return e.err }
func (e *PlaybackError) UserMessage() string { return e.Message }

package content

import (
	"fmt"
	"path"
	"strings"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

// Kind is how a piece of content is presented.
type Kind string

const (
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// Ref names exactly one piece of content.
type Ref struct {
	CourseID  string `json:"courseId" validate:"required"`
	ModuleID  string `json:"moduleId" validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
}

func (r Ref) String() string {
	return path.Join(r.CourseID, r.ModuleID, r.ContentID)
}

// AccessDescriptor is a short-lived capability to view the content named by
// the Ref it was requested for. It carries no expiry; the backend enforces
// validity and a lapsed descriptor surfaces only as a later failed load.
type AccessDescriptor struct {
	Kind        Kind   `json:"kind"`
	URL         string `json:"url"`
	FallbackURL string `json:"fallbackUrl,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// KindFromType maps the backend's content "type" to a presentation kind. Bare
// tags ("video", "pdf") and MIME types ("video/mp4", "application/pdf") are
// both accepted.
func KindFromType(contentType string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case t == "video", strings.HasPrefix(t, "video/"):
		return KindVideo, nil
	case t == "pdf", t == "document", t == "application/pdf":
		return KindDocument, nil
	}
	return "", perrors.Wrapf(perrors.ErrUnsupportedContent, "content type %q", contentType)
}

// NewAccessDescriptor builds a descriptor from the backend's secure-view
// fields.
func NewAccessDescriptor(contentType, url, fallbackURL, thumbnail string) (AccessDescriptor, error) {
	kind, err := KindFromType(contentType)
	if err != nil {
		return AccessDescriptor{}, err
	}
	if url == "" {
		return AccessDescriptor{}, fmt.Errorf("secure view for %s content has no url", kind)
	}
	d := AccessDescriptor{
		Kind:        kind,
		URL:         url,
		FallbackURL: fallbackURL,
		Thumbnail:   thumbnail,
	}
	if strings.Contains(contentType, "/") {
		d.MimeType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return d, nil
}

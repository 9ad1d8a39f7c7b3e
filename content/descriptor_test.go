package content_test

import (
	"testing"

	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestKindFromType(t *testing.T) {
	cases := map[string]content.Kind{
		"video":           content.KindVideo,
		"VIDEO":           content.KindVideo,
		"video/mp4":       content.KindVideo,
		"pdf":             content.KindDocument,
		"document":        content.KindDocument,
		"application/pdf": content.KindDocument,
	}
	for in, want := range cases {
		got, err := content.KindFromType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := content.KindFromType("quiz")
	require.ErrorIs(t, err, perrors.ErrUnsupportedContent)
}

func TestNewAccessDescriptor(t *testing.T) {
	d, err := content.NewAccessDescriptor("video/mp4", "https://cdn/a.mp4", "https://cdn/a.webm", "https://cdn/a.jpg")
	require.NoError(t, err)
	require.Equal(t, content.KindVideo, d.Kind)
	require.Equal(t, "video/mp4", d.MimeType)
	require.Equal(t, "https://cdn/a.webm", d.FallbackURL)

	d, err = content.NewAccessDescriptor("pdf", "https://cdn/notes.pdf", "", "")
	require.NoError(t, err)
	require.Equal(t, content.KindDocument, d.Kind)
	require.Empty(t, d.MimeType)

	_, err = content.NewAccessDescriptor("video", "", "", "")
	require.Error(t, err)
}

func TestRef_String(t *testing.T) {
	require.Equal(t, "c1/m1/x1", content.Ref{CourseID: "c1", ModuleID: "m1", ContentID: "x1"}.String())
}

package media_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/media"
)

func newDocument(t *testing.T) *media.Document {
	t.Helper()
	d, err := media.NewDocument(content.AccessDescriptor{Kind: content.KindDocument, URL: "https://cdn.example.com/d/week1.pdf"})
	require.NoError(t, err)
	return d
}

func TestDocument_LoadingUntilPageCountKnown(t *testing.T) {
	d := newDocument(t)

	view := d.View().Document
	require.True(t, view.ShowLoading)
	require.False(t, view.ShowPagination)
	require.Zero(t, d.GoTo(3))

	require.NoError(t, d.Loaded(5))
	view = d.View().Document
	require.False(t, view.ShowLoading)
	require.Equal(t, 1, view.Page)
	require.Equal(t, 5, view.PageCount)
	require.True(t, view.ShowPagination)
	require.False(t, view.HasPrev)
	require.True(t, view.HasNext)
}

func TestDocument_NavigationStaysInRange(t *testing.T) {
	d := newDocument(t)
	require.NoError(t, d.Loaded(3))

	require.Equal(t, 1, d.Prev())
	require.Equal(t, 2, d.Next())
	require.Equal(t, 3, d.Next())
	require.Equal(t, 3, d.Next())
	require.Equal(t, 1, d.GoTo(-4))
	require.Equal(t, 3, d.GoTo(99))

	view := d.View().Document
	require.True(t, view.HasPrev)
	require.False(t, view.HasNext)
}

func TestDocument_SinglePageHidesPagination(t *testing.T) {
	d := newDocument(t)
	require.NoError(t, d.Loaded(1))

	view := d.View().Document
	require.False(t, view.ShowPagination)
	require.False(t, view.HasNext)
	require.Equal(t, 1, d.Next())
}

func TestDocument_FailureIsTerminal(t *testing.T) {
	d := newDocument(t)
	d.Fail(errors.New("corrupt xref table"))

	err := d.Loaded(4)
	require.ErrorIs(t, err, perrors.ErrDocumentLoadFatal)

	view := d.View().Document
	require.False(t, view.ShowLoading)
	require.NotEmpty(t, view.Error)
	require.Zero(t, view.PageCount)
}

func TestDocument_NoPagesIsFailure(t *testing.T) {
	d := newDocument(t)
	require.ErrorIs(t, d.Loaded(0), perrors.ErrDocumentLoadFatal)
	require.NotEmpty(t, d.View().Document.Error)
}

func TestDocument_RejectsVideoDescriptor(t *testing.T) {
	_, err := media.NewDocument(content.AccessDescriptor{Kind: content.KindVideo, URL: "x"})
	require.ErrorIs(t, err, perrors.ErrUnsupportedContent)
}

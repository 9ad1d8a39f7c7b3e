package media

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

const msgDocumentFailed = "This document could not be displayed. Please try again later."

// DocumentView is the render model of a paged document.
type DocumentView struct {
	Source         string `json:"source"`
	ShowLoading    bool   `json:"showLoading"`
	Page           int    `json:"page,omitempty"`
	PageCount      int    `json:"pageCount,omitempty"`
	ShowPagination bool   `json:"showPagination"`
	HasPrev        bool   `json:"hasPrev"`
	HasNext        bool   `json:"hasNext"`
	Error          string `json:"error,omitempty"`
}

// Document tracks the current page of a paged document. Pages are 1-indexed
// and always within [1, pageCount] once the page count is known.
type Document struct {
	mu        sync.Mutex
	desc      content.AccessDescriptor
	loaded    bool
	pageCount int
	page      int
	err       error
	closed    bool
}

func NewDocument(desc content.AccessDescriptor) (*Document, error) {
	if desc.Kind != content.KindDocument {
		return nil, perrors.Wrapf(perrors.ErrUnsupportedContent, "document presenter for kind %q", desc.Kind)
	}
	return &Document{desc: desc}, nil
}

func (d *Document) Kind() content.Kind                   { return content.KindDocument }
func (d *Document) Descriptor() content.AccessDescriptor { return d.desc }

// Loaded is the viewer's signal that the document opened with pageCount
// pages. A document without pages is a load failure.
func (d *Document) Loaded(pageCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.err != nil {
		return d.err
	}
	if pageCount < 1 {
		d.fail(fmt.Errorf("document reported %d pages", pageCount))
		return d.err
	}
	d.loaded = true
	d.pageCount = pageCount
	d.page = d.clamp(max(d.page, 1))
	return nil
}

// Fail records a load error; it is terminal for this presenter.
func (d *Document) Fail(cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.err != nil {
		return
	}
	if cause == nil {
		cause = perrors.ErrDocumentLoadFatal
	}
	d.fail(cause)
}

// GoTo moves to page n, clamped to [1, pageCount]. It returns the page shown.
func (d *Document) GoTo(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded && d.err == nil {
		d.page = d.clamp(n)
	}
	return d.page
}

func (d *Document) Next() int {
	d.mu.Lock()
	p := d.page + 1
	d.mu.Unlock()
	return d.GoTo(p)
}

func (d *Document) Prev() int {
	d.mu.Lock()
	p := d.page - 1
	d.mu.Unlock()
	return d.GoTo(p)
}

func (d *Document) Page() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *Document) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	dv := &DocumentView{
		Source:      d.desc.URL,
		ShowLoading: !d.loaded && d.err == nil,
	}
	if d.err != nil {
		dv.Error = perrors.UserMessage(d.err, msgDocumentFailed)
	} else if d.loaded {
		dv.Page = d.page
		dv.PageCount = d.pageCount
		dv.ShowPagination = d.pageCount > 1
		dv.HasPrev = dv.ShowPagination && d.page > 1
		dv.HasNext = dv.ShowPagination && d.page < d.pageCount
	}
	return View{Kind: content.KindDocument, Document: dv}
}

func (d *Document) fail(cause error) {
	d.loaded = false
	d.err = &PlaybackError{Message: msgDocumentFailed, err: fmt.Errorf("%w: %w", perrors.ErrDocumentLoadFatal, cause)}
}

func (d *Document) clamp(n int) int {
	return min(max(n, 1), d.pageCount)
}

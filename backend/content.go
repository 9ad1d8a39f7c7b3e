package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-learning-portal/content"
	"github.com/pkg/errors"
)

type secureViewResponse struct {
	URL         string `json:"url"`
	FallbackURL string `json:"fallbackUrl"`
	Thumbnail   string `json:"thumbnail"`
	Type        string `json:"type"`
}

// SecureViewPath returns the secure-view endpoint for ref.
func SecureViewPath(ref content.Ref) string {
	return fmt.Sprintf("/courses/%s/modules/%s/content/%s/secure-view",
		url.PathEscape(ref.CourseID), url.PathEscape(ref.ModuleID), url.PathEscape(ref.ContentID))
}

func (c *Client) SecureView(ctx context.Context, ref content.Ref) (content.AccessDescriptor, error) {
	var resp secureViewResponse
	if err := c.do(ctx, http.MethodGet, SecureViewPath(ref), nil, &resp, "data"); err != nil {
		return content.AccessDescriptor{}, err
	}
	d, err := content.NewAccessDescriptor(resp.Type, resp.URL, resp.FallbackURL, resp.Thumbnail)
	if err != nil {
		return content.AccessDescriptor{}, errors.Wrapf(err, "[Client SecureView] %s", ref)
	}
	return d, nil
}

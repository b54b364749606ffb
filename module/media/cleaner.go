package media

import (
	"context"
	"strings"
	"time"

	"github.com/Ksaikiran28/NexChat/tools/errs"

	"github.com/go-resty/resty/v2"
)

// Cleaner removes the external object behind a message's image reference.
// Callers treat every failure as best effort: deleting a message must never
// hinge on the media host being up.
type Cleaner interface {
	Destroy(ctx context.Context, imageRef string) error
}

// HTTPCleaner deletes objects on the media service by public id.
type HTTPCleaner struct {
	cli *resty.Client
}

func NewHTTPCleaner(endpoint string) *HTTPCleaner {
	cli := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second).
		SetRetryCount(1)
	return &HTTPCleaner{cli: cli}
}

func (c *HTTPCleaner) Destroy(ctx context.Context, imageRef string) error {
	id := PublicID(imageRef)
	if id == "" {
		return errs.New("no public id in image ref", "ref", imageRef)
	}
	resp, err := c.cli.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/media/{id}")
	if err != nil {
		return errs.WrapMsg(err, "media destroy", "id", id)
	}
	if resp.IsError() {
		return errs.New("media destroy rejected", "id", id, "status", resp.StatusCode())
	}
	return nil
}

// PublicID extracts the object id from a stored image URL: last path
// segment with the extension stripped.
func PublicID(imageRef string) string {
	seg := imageRef
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.LastIndex(seg, "."); i > 0 {
		seg = seg[:i]
	}
	return seg
}

// Noop is used when no media endpoint is configured, and in tests.
type Noop struct{}

func (Noop) Destroy(context.Context, string) error { return nil }

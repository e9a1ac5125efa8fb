package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBrokenParentReference is returned when a reply's parent pointer (or a
// report's target) cannot be resolved to a live row. It is never silently
// collapsed to a nil result.
var ErrBrokenParentReference = errors.New("broken parent reference")

type ContentType string

const (
	ContentTypePulse   ContentType = "pulse"
	ContentTypeReply   ContentType = "reply"
	ContentTypeProfile ContentType = "profile"
)

/*

ContentRef is a tagged reference to a piece of content. Replies point at
either a pulse or another reply through it, and reports additionally may point
at a profile. The explicit discriminant replaces runtime type inspection.

*/

type ContentRef struct {
	Type ContentType `json:"type"`
	ID   string      `json:"id"`
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}

// ParseContentType validates an incoming discriminant string.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentTypePulse, ContentTypeReply, ContentTypeProfile:
		return ContentType(s), nil
	}
	return "", errors.Errorf("unknown content type %q", s)
}

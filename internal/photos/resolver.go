// Package photos provides the photo-resolution capability injected into the
// feed. The underlying photo subsystem (profile images, styled renditions)
// lives outside doorboard; this side only builds URLs and degrades to "no
// photo" when it can't.
package photos

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// TemplateResolver builds photo URLs from a configured template in which
// {uid} and {uuid} are substituted per user, e.g.
// "https://photos.example.org/styles/member_photo/{uuid}.jpg".
type TemplateResolver struct {
	template string
	logger   zerolog.Logger
}

func NewTemplateResolver(template string, logger zerolog.Logger) *TemplateResolver {
	return &TemplateResolver{template: strings.TrimSpace(template), logger: logger}
}

// ResolvePhoto returns the user's photo URL, or ok=false when none can be
// built. It never returns an error: a missing photo degrades to no image.
func (r *TemplateResolver) ResolvePhoto(_ context.Context, userID int64, userUUID string) (string, bool) {
	if r.template == "" {
		return "", false
	}
	if strings.Contains(r.template, "{uuid}") && userUUID == "" {
		// Can't build a uuid-keyed URL for a user with no uuid on file.
		r.logger.Warn().Int64("uid", userID).Msg("photo skipped: no uuid")
		return "", false
	}

	url := strings.ReplaceAll(r.template, "{uid}", strconv.FormatInt(userID, 10))
	url = strings.ReplaceAll(url, "{uuid}", userUUID)
	return url, true
}

package services

import (
	"strconv"
	"strings"
	"time"

	"mazadly/internal/config"
	"mazadly/internal/models"
)

// DefaultAvatarPath is the fallback asset served when no avatar resolves.
const DefaultAvatarPath = "/static/default-avatar.png"

// URLNormalizer turns the heterogeneous upload locations the legacy API hands
// out into one absolute URL shape.
type URLNormalizer struct {
	apiBase    string
	devHost    string
	publicBase string
}

func NewURLNormalizer(cfg *config.Config) *URLNormalizer {
	return &URLNormalizer{
		apiBase:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		devHost:    strings.TrimSuffix(cfg.DevServerURL, "/"),
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
}

// Normalize resolves a raw location to an absolute URL:
//   - absolute http(s) URLs pass through, except that the known development
//     host is rewritten to the public base so stored dev links stay valid;
//   - paths with a leading slash (including /static/...) are anchored to the
//     API base;
//   - anything else is treated as a bare filename under /static/.
func (n *URLNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if n.devHost != "" && strings.HasPrefix(raw, n.devHost) {
			return n.publicBase + strings.TrimPrefix(raw, n.devHost)
		}
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return n.apiBase + raw
	}
	return n.apiBase + "/static/" + raw
}

// CacheBust appends an upload-timestamp query parameter so a replaced image
// under an unchanged path is never served from a stale browser cache.
func (n *URLNormalizer) CacheBust(url string, uploadedAt time.Time) string {
	if url == "" || uploadedAt.IsZero() {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "t=" + strconv.FormatInt(uploadedAt.Unix(), 10)
}

// AttachmentURL resolves a single attachment descriptor: fullUrl wins over
// url, which wins over a bare filename.
func (n *URLNormalizer) AttachmentURL(a *models.Attachment) string {
	if a.IsZero() {
		return ""
	}
	var raw string
	switch {
	case a.FullURL != "":
		raw = a.FullURL
	case a.URL != "":
		raw = a.URL
	default:
		raw = a.Filename
	}
	return n.CacheBust(n.Normalize(raw), a.UploadedAt)
}

// AvatarURL applies the avatar priority chain for a user:
// photoURL > avatar.fullUrl > avatar.url > avatar.filename > default asset.
func (n *URLNormalizer) AvatarURL(user *models.User) string {
	if user.PhotoURL != nil && *user.PhotoURL != "" {
		return n.Normalize(*user.PhotoURL)
	}
	if url := n.AttachmentURL(user.Avatar); url != "" {
		return url
	}
	return n.Normalize(DefaultAvatarPath)
}

// CoverURL resolves the profile cover image, empty when none is set.
func (n *URLNormalizer) CoverURL(user *models.User) string {
	return n.AttachmentURL(user.Cover)
}

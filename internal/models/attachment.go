package models

import (
	"encoding/json"
	"time"
)

// Attachment describes an uploaded file as the legacy API returns it. The
// legacy server is loose about the shape: the same field may arrive as a bare
// URL string or as a full descriptor object, so unmarshalling accepts both.
type Attachment struct {
	URL        string    `json:"url,omitempty"`
	FullURL    string    `json:"fullUrl,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Mimetype   string    `json:"mimetype,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	// Bare string form: treat the value as the relative URL.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Attachment{URL: s}
		return nil
	}

	type attachmentAlias Attachment
	var alias attachmentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = Attachment(alias)
	return nil
}

// IsZero reports whether no usable location is present in the descriptor.
func (a *Attachment) IsZero() bool {
	return a == nil || (a.URL == "" && a.FullURL == "" && a.Filename == "")
}

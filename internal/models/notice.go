package models

// NoticeKind identifies a profile-completion banner variant. Variants are
// mutually exclusive and resolved in priority order.
type NoticeKind string

const (
	NoticeMissingFields NoticeKind = "MISSING_FIELDS"
	NoticeNoIdentity    NoticeKind = "NO_IDENTITY"
	NoticePendingReview NoticeKind = "PENDING_REVIEW"
	NoticeNotCertified  NoticeKind = "NOT_CERTIFIED"
	NoticeComplete      NoticeKind = "COMPLETE"
)

// NoticeAction is the one primary action a banner carries.
type NoticeAction string

const (
	ActionGoToSettings NoticeAction = "GO_TO_SETTINGS"
	ActionDismiss      NoticeAction = "DISMISS"
)

// Notice is the rendered banner payload handed to the client.
type Notice struct {
	Kind     NoticeKind   `json:"kind"`
	Icon     string       `json:"icon"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Gradient string       `json:"gradient"`
	Action   NoticeAction `json:"action"`
}

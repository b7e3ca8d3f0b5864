package models

// ModerationLabel is the closed set of classifications the moderation oracle
// may return. Anything outside this set is treated as unknown.
type ModerationLabel string

const (
	LabelSafe                ModerationLabel = "SAFE"
	LabelHateSpeech          ModerationLabel = "HATE_SPEECH"
	LabelAbusiveLanguage     ModerationLabel = "ABUSIVE_LANGUAGE"
	LabelSexualContent       ModerationLabel = "SEXUAL_CONTENT"
	LabelSexualContentMinors ModerationLabel = "SEXUAL_CONTENT_MINORS"
	LabelViolence            ModerationLabel = "VIOLENCE"
	LabelSelfHarm            ModerationLabel = "SELF_HARM"
	LabelIllegalActivity     ModerationLabel = "ILLEGAL_ACTIVITY"
	LabelSpam                ModerationLabel = "SPAM"
	LabelMisinformation      ModerationLabel = "MISINFORMATION"
	LabelSensitivePolitical  ModerationLabel = "SENSITIVE_POLITICAL"
)

type ModerationAction string

const (
	ActionAllow ModerationAction = "allow"
	ActionFlag  ModerationAction = "flag"
	ActionWarn  ModerationAction = "warn"
	ActionBan   ModerationAction = "ban"
)

// ModerationVerdict is produced per moderated text and consumed immediately;
// it is never persisted. A Fallback verdict means the oracle was unreachable
// or returned garbage and the classifier degraded to SAFE/allow. The cause is
// carried for logging so the degrade path stays auditable.
type ModerationVerdict struct {
	Label         ModerationLabel  `json:"label"`
	Action        ModerationAction `json:"action"`
	Reason        string           `json:"reason"`
	Fallback      bool             `json:"-"`
	FallbackCause string           `json:"-"`
}

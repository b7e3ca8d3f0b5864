package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"askhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const moderationSystemPrompt = `You are a strict content moderation classifier. Given user text, return a JSON with:
- label: one of [SAFE, HATE_SPEECH, ABUSIVE_LANGUAGE, SEXUAL_CONTENT, SEXUAL_CONTENT_MINORS, VIOLENCE, SELF_HARM, ILLEGAL_ACTIVITY, SPAM, MISINFORMATION, SENSITIVE_POLITICAL]
- reason: brief explanation (max 25 words)

Rules:
- SEXUAL_CONTENT_MINORS is hard block if any minor sexual context.
- Be conservative: if unsure between safe and unsafe, pick the unsafe category.
- Do not include any extra text besides the JSON.`

// actionTable maps each known label to its enforcement action. Labels the
// oracle invents are handled separately and flag conservatively.
var actionTable = map[models.ModerationLabel]models.ModerationAction{
	models.LabelSafe:                models.ActionAllow,
	models.LabelHateSpeech:          models.ActionFlag,
	models.LabelAbusiveLanguage:     models.ActionBan,
	models.LabelSexualContent:       models.ActionBan,
	models.LabelSexualContentMinors: models.ActionBan,
	models.LabelViolence:            models.ActionFlag,
	models.LabelSelfHarm:            models.ActionFlag,
	models.LabelIllegalActivity:     models.ActionFlag,
	models.LabelSpam:                models.ActionBan,
	models.LabelMisinformation:      models.ActionWarn,
	models.LabelSensitivePolitical:  models.ActionFlag,
}

// userBanner is the user persistence contract consumed for ban enforcement,
// implemented by repository.UserRepository.
type userBanner interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	MarkInactive(ctx context.Context, id uuid.UUID) error
}

// ModerationService classifies user text via the language oracle and
// enforces ban actions. Classification never blocks the caller: any failure
// produces the permissive fallback verdict instead of an error.
type ModerationService struct {
	completer completer
	users     userBanner
	logger    *zap.Logger
}

func NewModerationService(completer completer, users userBanner, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		completer: completer,
		users:     users,
		logger:    logger,
	}
}

// fallbackVerdict is the most permissive verdict, returned whenever the
// oracle cannot produce a trustworthy one. It is tagged so callers and audit
// logs can tell it apart from a genuine SAFE classification.
func fallbackVerdict(cause string) models.ModerationVerdict {
	return models.ModerationVerdict{
		Label:         models.LabelSafe,
		Action:        models.ActionAllow,
		Reason:        "moderation fallback",
		Fallback:      true,
		FallbackCause: cause,
	}
}

// Classify asks the oracle for a structured verdict on text. Oracle failure
// or unparseable output degrades to the SAFE/allow fallback; a missing label
// reads as SAFE, a known label maps to its action via the fixed policy table,
// and a label outside the closed enumeration flags conservatively.
func (s *ModerationService) Classify(ctx context.Context, text string) models.ModerationVerdict {
	raw, err := s.completer.Complete(ctx, moderationSystemPrompt, `Classify this text:
"""`+strings.TrimSpace(text)+`"""`, CompletionParams{
		Temperature: 0.0,
		MaxTokens:   300,
		TopP:        1.0,
	})
	if err != nil {
		s.logger.Error("Moderation oracle call failed, using fallback verdict", zap.Error(err))
		return fallbackVerdict(err.Error())
	}

	var parsed struct {
		Label  string `json:"label"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		s.logger.Error("Moderation verdict is not valid JSON, using fallback verdict",
			zap.Error(err),
			zap.String("raw", raw),
		)
		return fallbackVerdict("unparseable oracle response")
	}

	label := models.ModerationLabel(strings.ToUpper(strings.TrimSpace(parsed.Label)))
	if label == "" {
		// A parsed verdict without a label reads as SAFE, not as an
		// unknown label.
		label = models.LabelSafe
	}
	action, known := actionTable[label]
	if !known {
		s.logger.Warn("Moderation oracle returned unknown label, flagging",
			zap.String("label", string(label)),
		)
		action = models.ActionFlag
	}

	return models.ModerationVerdict{
		Label:  label,
		Action: action,
		Reason: parsed.Reason,
	}
}

// extractJSONObject trims the response down to its first balanced top-level
// JSON object. Oracles occasionally wrap the object in prose or code fences
// despite instructions.
func extractJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return raw
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return raw[start:]
}

// BanUser removes the user record. Returns false when the user is already
// gone, so repeated calls on the same id are safe. If the row still resolves
// after deletion that is a storage consistency fault: it is logged at the
// highest severity, the user is marked inactive as an alternate removal, and
// the ban reports failure.
func (s *ModerationService) BanUser(ctx context.Context, userID uuid.UUID) bool {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrUserNotFound) {
			return false
		}
		s.logger.Error("Ban lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return false
	}

	if _, err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error("Ban deletion failed",
			zap.String("user_id", userID.String()),
			zap.String("username", user.Username),
			zap.Error(err),
		)
		return false
	}

	remaining, err := s.users.GetByID(ctx, userID)
	if err == nil && remaining != nil {
		s.logger.Error("User still resolves after ban deletion, storage consistency fault",
			zap.String("user_id", userID.String()),
			zap.String("username", user.Username),
		)
		if err := s.users.MarkInactive(ctx, userID); err != nil {
			s.logger.Error("Fallback deactivation failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return false
	}

	s.logger.Warn("User banned and deleted",
		zap.String("user_id", userID.String()),
		zap.String("username", user.Username),
	)
	return true
}

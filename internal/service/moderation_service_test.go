package service

import (
	"context"
	"testing"
	"time"

	"askhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestModeration(completer completer, users userBanner) *ModerationService {
	return NewModerationService(completer, users, zap.NewNop())
}

func TestClassifyActionTable(t *testing.T) {
	tests := []struct {
		label  string
		action models.ModerationAction
	}{
		{"SAFE", models.ActionAllow},
		{"HATE_SPEECH", models.ActionFlag},
		{"ABUSIVE_LANGUAGE", models.ActionBan},
		{"SEXUAL_CONTENT", models.ActionBan},
		{"SEXUAL_CONTENT_MINORS", models.ActionBan},
		{"VIOLENCE", models.ActionFlag},
		{"SELF_HARM", models.ActionFlag},
		{"ILLEGAL_ACTIVITY", models.ActionFlag},
		{"SPAM", models.ActionBan},
		{"MISINFORMATION", models.ActionWarn},
		{"SENSITIVE_POLITICAL", models.ActionFlag},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			oracle := &mockCompleter{response: `{"label": "` + tt.label + `", "reason": "because"}`}
			svc := newTestModeration(oracle, newMockUserStore())

			verdict := svc.Classify(context.Background(), "some text")
			assert.Equal(t, models.ModerationLabel(tt.label), verdict.Label)
			assert.Equal(t, tt.action, verdict.Action)
			assert.Equal(t, "because", verdict.Reason)
			assert.False(t, verdict.Fallback)
		})
	}
}

func TestClassifyOracleFailureFallsBackSafe(t *testing.T) {
	oracle := &mockCompleter{err: errBoom}
	svc := newTestModeration(oracle, newMockUserStore())

	verdict := svc.Classify(context.Background(), "some hateful text")
	assert.Equal(t, models.LabelSafe, verdict.Label)
	assert.Equal(t, models.ActionAllow, verdict.Action)
	assert.NotEqual(t, models.ActionBan, verdict.Action)
	assert.Equal(t, "moderation fallback", verdict.Reason)
	assert.True(t, verdict.Fallback)
	assert.NotEmpty(t, verdict.FallbackCause)
}

func TestClassifyGarbageResponseFallsBackSafe(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"plain prose", "I cannot classify this"},
		{"truncated json", `{"label": "SPAM"`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &mockCompleter{response: tt.response}
			svc := newTestModeration(oracle, newMockUserStore())

			verdict := svc.Classify(context.Background(), "text")
			assert.Equal(t, models.LabelSafe, verdict.Label)
			assert.Equal(t, models.ActionAllow, verdict.Action)
			assert.True(t, verdict.Fallback)
		})
	}
}

func TestClassifyUnknownLabelFlags(t *testing.T) {
	oracle := &mockCompleter{response: `{"label": "SOMETHING_NEW", "reason": "novel"}`}
	svc := newTestModeration(oracle, newMockUserStore())

	verdict := svc.Classify(context.Background(), "text")
	assert.Equal(t, models.ModerationLabel("SOMETHING_NEW"), verdict.Label)
	assert.Equal(t, models.ActionFlag, verdict.Action)
	assert.False(t, verdict.Fallback)
}

func TestClassifyMissingLabelDefaultsSafe(t *testing.T) {
	oracle := &mockCompleter{response: `{"reason": "no label given"}`}
	svc := newTestModeration(oracle, newMockUserStore())

	verdict := svc.Classify(context.Background(), "text")
	assert.Equal(t, models.LabelSafe, verdict.Label)
	assert.Equal(t, models.ActionAllow, verdict.Action)
	assert.Equal(t, "no label given", verdict.Reason)
	assert.False(t, verdict.Fallback)
}

func TestClassifyExtractsWrappedJSON(t *testing.T) {
	oracle := &mockCompleter{response: "Here is the verdict:\n```json\n{\"label\": \"SPAM\", \"reason\": \"promo {links}\"}\n```"}
	svc := newTestModeration(oracle, newMockUserStore())

	verdict := svc.Classify(context.Background(), "buy now!!!")
	assert.Equal(t, models.LabelSpam, verdict.Label)
	assert.Equal(t, models.ActionBan, verdict.Action)
}

func TestClassifyUsesStrictParams(t *testing.T) {
	oracle := &mockCompleter{response: `{"label": "SAFE", "reason": ""}`}
	svc := newTestModeration(oracle, newMockUserStore())

	svc.Classify(context.Background(), "text")
	assert.Zero(t, oracle.lastParams.Temperature)
	assert.Equal(t, 300, oracle.lastParams.MaxTokens)
	assert.InDelta(t, 1.0, oracle.lastParams.TopP, 1e-6)
	assert.Contains(t, oracle.lastUser, "Classify this text:")
}

func testUser() *models.User {
	now := time.Now()
	return &models.User{
		ID:        uuid.New(),
		Username:  "poster",
		Email:     "poster@example.com",
		Role:      models.RoleGuest,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBanUserDeletes(t *testing.T) {
	user := testUser()
	users := newMockUserStore(user)
	svc := newTestModeration(&mockCompleter{}, users)

	ok := svc.BanUser(context.Background(), user.ID)
	assert.True(t, ok)
	assert.NotContains(t, users.users, user.ID)
}

func TestBanUserIdempotent(t *testing.T) {
	user := testUser()
	users := newMockUserStore(user)
	svc := newTestModeration(&mockCompleter{}, users)

	require.True(t, svc.BanUser(context.Background(), user.ID))
	assert.False(t, svc.BanUser(context.Background(), user.ID))
	assert.False(t, svc.BanUser(context.Background(), user.ID))
	assert.Equal(t, 1, users.deletes)
}

func TestBanUserUnknownID(t *testing.T) {
	svc := newTestModeration(&mockCompleter{}, newMockUserStore())

	assert.False(t, svc.BanUser(context.Background(), uuid.New()))
}

func TestBanUserIntegrityFault(t *testing.T) {
	user := testUser()
	users := newMockUserStore(user)
	users.stickyRows = true
	svc := newTestModeration(&mockCompleter{}, users)

	ok := svc.BanUser(context.Background(), user.ID)
	assert.False(t, ok)
	require.Len(t, users.markedInactive, 1)
	assert.Equal(t, user.ID, users.markedInactive[0])
	assert.False(t, users.users[user.ID].IsActive)
}

func TestBanUserDeleteFailure(t *testing.T) {
	user := testUser()
	users := newMockUserStore(user)
	users.deleteErr = errBoom
	svc := newTestModeration(&mockCompleter{}, users)

	assert.False(t, svc.BanUser(context.Background(), user.ID))
	assert.Contains(t, users.users, user.ID)
}

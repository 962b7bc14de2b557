package email

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"widt/internal/providers"
	"widt/internal/store"
)

// local mocks to avoid an import cycle with testutil
type verifyTestLogger struct{}

func (verifyTestLogger) Errorf(providers.TypeEnum, string, ...interface{}) {}
func (verifyTestLogger) Warnf(providers.TypeEnum, string, ...interface{})  {}
func (verifyTestLogger) Debugf(providers.TypeEnum, string, ...interface{}) {}
func (verifyTestLogger) Infof(providers.TypeEnum, string, ...interface{})  {}
func (verifyTestLogger) Fatalf(providers.TypeEnum, string, ...interface{}) {}
func (verifyTestLogger) Close()                                            {}

type verifyTestMetrics struct{}

func (verifyTestMetrics) IncRequestsTotal(string, int)                {}
func (verifyTestMetrics) ObserveRequestDuration(string, time.Duration) {}
func (verifyTestMetrics) IncInboundMessages(string)                   {}
func (verifyTestMetrics) IncRepliesSent(string)                       {}
func (verifyTestMetrics) IncReportsGenerated(string)                  {}
func (verifyTestMetrics) IncEmailsSent(string, bool)                  {}
func (verifyTestMetrics) ObserveSweepDuration(time.Duration)          {}
func (verifyTestMetrics) ObserveStoreDuration(string, time.Duration)  {}

type verifyTestCache struct{}

func (verifyTestCache) Get(string) ([]byte, bool) { return nil, false }
func (verifyTestCache) Set(string, []byte)        {}
func (verifyTestCache) Del(string)                {}

type captureSender struct {
	messages []Message
	fail     error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	if c.fail != nil {
		return c.fail
	}
	c.messages = append(c.messages, msg)
	return nil
}

type verifierFixture struct {
	verifier *Verifier
	meta     *store.MetaRepository
	sender   *captureSender
	now      time.Time
}

func newVerifierFixture(t *testing.T) *verifierFixture {
	t.Helper()
	meta := store.NewMetaRepository(store.NewMemory(), verifyTestCache{})
	sender := &captureSender{}
	f := &verifierFixture{
		meta:   meta,
		sender: sender,
		now:    time.Unix(1700000000, 0),
	}
	f.verifier = NewVerifier(meta, sender, verifyTestLogger{}, verifyTestMetrics{})
	f.verifier.clock = func() time.Time { return f.now }
	f.verifier.genCode = func() string { return "123456" }
	return f
}

func (f *verifierFixture) withEmail(t *testing.T, chatID, address string) {
	t.Helper()
	err := f.meta.Merge(context.Background(), chatID, map[string]interface{}{"email": address})
	require.NoError(t, err)
}

func TestVerifier_SendCodePersistsAfterDispatch(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()
	f.withEmail(t, "chat1", "someone@example.com")

	message, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "Verification email sent! Please check your inbox.", message)

	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, "someone@example.com", f.sender.messages[0].To)
	assert.Contains(t, f.sender.messages[0].Text, "123456")

	meta, err := f.meta.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "123456", meta.EmailVerificationCode)
	assert.False(t, meta.EmailVerified)
	assert.Equal(t, f.now.Unix(), meta.EmailVerificationTimestamp)
}

func TestVerifier_SendCodeWithoutEmailErrors(t *testing.T) {
	f := newVerifierFixture(t)
	_, err := f.verifier.SendCode(context.Background(), "chat1")
	assert.Error(t, err)
}

func TestVerifier_SendCodeRespectsCooldown(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()
	f.withEmail(t, "chat1", "someone@example.com")

	_, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	message, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)
	assert.Contains(t, message, "Please wait until")
	assert.Len(t, f.sender.messages, 1, "no second email inside the cooldown")

	f.now = f.now.Add(ResendCooldown)
	message, err = f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "Verification email sent! Please check your inbox.", message)
	assert.Len(t, f.sender.messages, 2)
}

func TestVerifier_SendFailureIsNotFatal(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()
	f.withEmail(t, "chat1", "someone@example.com")
	f.sender.fail = fmt.Errorf("mailgun is down")

	message, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "We couldn't send the verification email right now. Please try /resend later.", message)

	// No code persisted for an email that never went out.
	meta, err := f.meta.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.Empty(t, meta.EmailVerificationCode)
	assert.Zero(t, meta.EmailVerificationTimestamp)
}

func TestVerifier_ResendGuards(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()

	message, err := f.verifier.Resend(ctx, "chat1")
	require.NoError(t, err)
	assert.Contains(t, message, "Please run /config first.")

	f.withEmail(t, "chat2", "done@example.com")
	err = f.meta.Merge(ctx, "chat2", map[string]interface{}{"email_verified": true})
	require.NoError(t, err)
	message, err = f.verifier.Resend(ctx, "chat2")
	require.NoError(t, err)
	assert.Contains(t, message, "already been verified")

	f.withEmail(t, "chat3", "pending@example.com")
	message, err = f.verifier.Resend(ctx, "chat3")
	require.NoError(t, err)
	assert.Equal(t, "Verification email sent! Please check your inbox.", message)
}

func TestVerifier_VerifyMatch(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()
	f.withEmail(t, "chat1", "someone@example.com")
	_, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)

	message, err := f.verifier.Verify(ctx, "chat1", "123456")
	require.NoError(t, err)
	assert.Equal(t, "We've successfully verified your email!", message)

	meta, err := f.meta.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.True(t, meta.EmailVerified)
	assert.Empty(t, meta.EmailVerificationCode)
}

func TestVerifier_VerifyMismatchLeavesState(t *testing.T) {
	f := newVerifierFixture(t)
	ctx := context.Background()
	f.withEmail(t, "chat1", "someone@example.com")
	_, err := f.verifier.SendCode(ctx, "chat1")
	require.NoError(t, err)

	message, err := f.verifier.Verify(ctx, "chat1", "000000")
	require.NoError(t, err)
	assert.Equal(t, "The code does not match our record. Please try again.", message)

	meta, err := f.meta.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.False(t, meta.EmailVerified)
	assert.Equal(t, "123456", meta.EmailVerificationCode)

	// The stored code keeps working after a typo.
	message, err = f.verifier.Verify(ctx, "chat1", "123456")
	require.NoError(t, err)
	assert.Equal(t, "We've successfully verified your email!", message)
}

func TestVerifier_VerifyWithoutCode(t *testing.T) {
	f := newVerifierFixture(t)
	message, err := f.verifier.Verify(context.Background(), "chat1", "123456")
	require.NoError(t, err)
	assert.Equal(t, "No verification email sent to you yet!", message)
}

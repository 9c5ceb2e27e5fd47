// internal/application/usecase/quickregister_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chkdom "marketcart/internal/domain/checkout"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, toEmail+":"+code)
	return nil
}

type fakeRegistrar struct {
	calls int
	err   error
}

func (f *fakeRegistrar) Register(ctx context.Context, email, sessionID string) error {
	f.calls++
	return f.err
}

func verifyingPolicy() chkdom.GuestPolicy {
	return chkdom.GuestPolicy{
		Behavior:            chkdom.GuestProceedWithEmail,
		RequireVerification: true,
		RequireTerms:        true,
	}
}

func quickRegisterFixture(mailer *fakeMailer, registrar *fakeRegistrar) (*QuickRegisterUsecase, *memSessions) {
	repo := newMemSessions()
	uc := NewQuickRegisterUsecaseWithClock(
		repo, mailer, registrar, verifyingPolicy(),
		fixedClock{t: time.Unix(1700000000, 0)},
		func() string { return "424242" },
	)
	return uc, repo
}

func TestSendCodeHappyPath(t *testing.T) {
	mailer := &fakeMailer{}
	uc, repo := quickRegisterFixture(mailer, &fakeRegistrar{})
	ctx := context.Background()

	require.NoError(t, uc.SendCode(ctx, "s1", "shopper@example.com"))

	assert.Equal(t, []string{"shopper@example.com:424242"}, mailer.sent)

	sess := repo.docs["s1"]
	require.NotNil(t, sess)
	assert.True(t, sess.QuickRegister.SentCode)
	assert.False(t, sess.QuickRegister.SendingCode)
	assert.Equal(t, "424242", sess.QuickRegister.IssuedCode)
}

func TestSendCodeRejectsBadEmail(t *testing.T) {
	uc, _ := quickRegisterFixture(&fakeMailer{}, &fakeRegistrar{})
	err := uc.SendCode(context.Background(), "s1", "not-an-email")
	assert.ErrorIs(t, err, ErrQuickRegisterInvalidEmail)
}

func TestSendCodeMailFailureLeavesRetryable(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("sendgrid down")}
	uc, repo := quickRegisterFixture(mailer, &fakeRegistrar{})

	err := uc.SendCode(context.Background(), "s1", "shopper@example.com")
	require.Error(t, err)

	sess := repo.docs["s1"]
	require.NotNil(t, sess)
	assert.False(t, sess.QuickRegister.SentCode)
	assert.False(t, sess.QuickRegister.SendingCode)
}

func TestCompleteRegistrationLatch(t *testing.T) {
	registrar := &fakeRegistrar{}
	uc, repo := quickRegisterFixture(&fakeMailer{}, registrar)
	ctx := context.Background()

	require.NoError(t, uc.SendCode(ctx, "s1", "shopper@example.com"))

	// Wrong code is rejected and nothing latches.
	_, err := uc.CompleteRegistration(ctx, "s1", "999999", true)
	assert.ErrorIs(t, err, ErrQuickRegisterCodeMismatch)
	assert.False(t, repo.docs["s1"].QuickRegister.Registered)

	nonces, err := uc.CompleteRegistration(ctx, "s1", "424242", true)
	require.NoError(t, err)
	assert.Equal(t, 1, registrar.calls)
	assert.NotEmpty(t, nonces.Cart)
	assert.NotEmpty(t, nonces.Checkout)
	assert.NotEqual(t, nonces.Cart, nonces.Checkout)

	qr := repo.docs["s1"].QuickRegister
	assert.True(t, qr.Registered, "registered is a one-way latch")
	assert.True(t, qr.TermsAgreed)
}

func TestCompleteRegistrationUnknownSession(t *testing.T) {
	uc, _ := quickRegisterFixture(&fakeMailer{}, &fakeRegistrar{})
	_, err := uc.CompleteRegistration(context.Background(), "ghost", "424242", true)
	assert.ErrorIs(t, err, ErrQuickRegisterSessionNotFound)
}

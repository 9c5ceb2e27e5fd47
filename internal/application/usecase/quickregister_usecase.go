// internal/application/usecase/quickregister_usecase.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/google/uuid"

	chkdom "marketcart/internal/domain/checkout"
)

var (
	ErrQuickRegisterInvalidArgument = errors.New("quickregister_usecase: invalid argument")
	ErrQuickRegisterInvalidEmail    = errors.New("quickregister_usecase: invalid email")
	ErrQuickRegisterCodeMismatch    = errors.New("quickregister_usecase: verification code mismatch")
	ErrQuickRegisterSessionNotFound = errors.New("quickregister_usecase: session not found")
)

// VerificationMailerPort sends the guest verification code.
type VerificationMailerPort interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
}

// RegistrarPort completes the lightweight guest registration against the
// surrounding account system.
type RegistrarPort interface {
	Register(ctx context.Context, email, sessionID string) error
}

// Nonces are the per-session request tokens refreshed on successful
// registration.
type Nonces struct {
	Cart     string `json:"cart"`
	Checkout string `json:"checkout"`
}

// NewNonces mints a fresh nonce pair.
func NewNonces() Nonces {
	return Nonces{Cart: uuid.NewString(), Checkout: uuid.NewString()}
}

// QuickRegisterUsecase drives the guest identity-capture flow:
// email -> verification code mail -> registration (one-way latch).
type QuickRegisterUsecase struct {
	sessions  chkdom.Repository
	mailer    VerificationMailerPort
	registrar RegistrarPort
	policy    chkdom.GuestPolicy
	clock     Clock

	// codeFn is swappable in tests.
	codeFn func() string
}

func NewQuickRegisterUsecase(sessions chkdom.Repository, mailer VerificationMailerPort, registrar RegistrarPort, policy chkdom.GuestPolicy) *QuickRegisterUsecase {
	return &QuickRegisterUsecase{
		sessions:  sessions,
		mailer:    mailer,
		registrar: registrar,
		policy:    policy,
		clock:     systemClock{},
		codeFn:    randomCode,
	}
}

// NewQuickRegisterUsecaseWithClock is useful for tests.
func NewQuickRegisterUsecaseWithClock(sessions chkdom.Repository, mailer VerificationMailerPort, registrar RegistrarPort, policy chkdom.GuestPolicy, clock Clock, codeFn func() string) *QuickRegisterUsecase {
	uc := NewQuickRegisterUsecase(sessions, mailer, registrar, policy)
	if clock != nil {
		uc.clock = clock
	}
	if codeFn != nil {
		uc.codeFn = codeFn
	}
	return uc
}

// SendCode records the guest email on the session, mails a verification
// code, and marks the session sent_code on success. A mail transport
// failure leaves the session unmarked so the guest can retry.
func (uc *QuickRegisterUsecase) SendCode(ctx context.Context, sessionID, email string) error {
	sid := strings.TrimSpace(sessionID)
	addr := strings.TrimSpace(email)
	if sid == "" {
		return ErrQuickRegisterInvalidArgument
	}
	if !chkdom.ValidEmail(addr) {
		return ErrQuickRegisterInvalidEmail
	}
	if uc.mailer == nil {
		return errors.New("quickregister_usecase: mailer not configured")
	}

	now := uc.clock.Now()
	sess, err := uc.loadOrCreate(ctx, sid)
	if err != nil {
		return err
	}

	code := uc.codeFn()
	qr := sess.QuickRegister
	qr.Email = addr
	qr.SendingCode = true
	qr.IssuedCode = code

	if err := uc.mailer.SendVerificationCode(ctx, addr, code); err != nil {
		qr.SendingCode = false
		sess.Touch(now)
		if upErr := uc.sessions.Upsert(ctx, sess); upErr != nil {
			log.Printf("[quickregister_usecase] session save after mail failure also failed: %v", upErr)
		}
		return fmt.Errorf("quickregister_usecase: send code: %w", err)
	}

	qr.MarkCodeSent()
	sess.Touch(now)
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return fmt.Errorf("quickregister_usecase: save session: %w", err)
	}
	log.Printf("[quickregister_usecase] verification code sent session=%s", sid)
	return nil
}

// CompleteRegistration verifies the entered code (when the policy requires
// verification), latches the registered flag, and returns refreshed
// nonces.
func (uc *QuickRegisterUsecase) CompleteRegistration(ctx context.Context, sessionID, code string, termsAgreed bool) (Nonces, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return Nonces{}, ErrQuickRegisterInvalidArgument
	}

	sess, err := uc.sessions.GetByID(ctx, sid)
	if err != nil {
		return Nonces{}, fmt.Errorf("quickregister_usecase: load session: %w", err)
	}
	if sess == nil || sess.QuickRegister == nil {
		return Nonces{}, ErrQuickRegisterSessionNotFound
	}

	qr := sess.QuickRegister
	entered := strings.TrimSpace(code)

	if uc.policy.RequireVerification && !qr.Registered {
		if !qr.SentCode || entered == "" || entered != qr.IssuedCode {
			return Nonces{}, ErrQuickRegisterCodeMismatch
		}
	}

	if uc.registrar != nil {
		if err := uc.registrar.Register(ctx, qr.Email, sid); err != nil {
			return Nonces{}, fmt.Errorf("quickregister_usecase: register: %w", err)
		}
	}

	qr.Code = entered
	qr.TermsAgreed = termsAgreed
	qr.Register()

	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return Nonces{}, fmt.Errorf("quickregister_usecase: save session: %w", err)
	}

	return NewNonces(), nil
}

func (uc *QuickRegisterUsecase) loadOrCreate(ctx context.Context, sid string) (*chkdom.Session, error) {
	sess, err := uc.sessions.GetByID(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("quickregister_usecase: load session: %w", err)
	}
	if sess != nil {
		if sess.QuickRegister == nil {
			sess.QuickRegister = &chkdom.QuickRegisterState{}
		}
		return sess, nil
	}
	return chkdom.NewSession(sid, uc.clock.Now())
}

// randomCode draws a 6-digit, zero-padded verification code.
func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing is effectively unreachable; fall back to a
		// constant rather than panic inside a request.
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

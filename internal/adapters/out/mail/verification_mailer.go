// internal/adapters/out/mail/verification_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"
)

// VerificationMailer implements usecase.VerificationMailerPort: it mails
// the guest quick-register verification code through an EmailClient.
type VerificationMailer struct {
	client      EmailClient
	fromAddress string
	shopName    string
}

// NewVerificationMailer builds the mailer.
//
//   - client      : SendGrid / SMTP EmailClient implementation
//   - fromAddress : sender address
//   - shopName    : shown in the subject line
func NewVerificationMailer(client EmailClient, fromAddress, shopName string) *VerificationMailer {
	name := strings.TrimSpace(shopName)
	if name == "" {
		name = "Marketcart"
	}
	return &VerificationMailer{
		client:      client,
		fromAddress: fromAddress,
		shopName:    name,
	}
}

// SendVerificationCode mails the code for guest checkout verification.
func (m *VerificationMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	subject := fmt.Sprintf("[%s] Your checkout verification code", m.shopName)

	body := fmt.Sprintf(
		`Your verification code for guest checkout:

  %s

Enter this code on the checkout page to continue.
If you did not request this, you can ignore this email.`,
		strings.TrimSpace(code),
	)

	return m.client.Send(ctx, m.fromAddress, toEmail, subject, body)
}

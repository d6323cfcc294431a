package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers verification and reset links through the
// Resend API. Links point at the frontend routes the guard classifies as
// auth routes.
type ResendEmailSender struct {
	client     *resend.Client
	from       string
	appBaseURL string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.appBaseURL, token)
	return s.send(ctx, email,
		"Please confirm your email",
		fmt.Sprintf("<p>Please click <a href=%q>here</a> to confirm your email</p>", link),
	)
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := fmt.Sprintf("%s/new-password?token=%s", s.appBaseURL, token)
	return s.send(ctx, email,
		"Please reset your password here.",
		fmt.Sprintf("<p>Please click <a href=%q>here</a> to reset your password</p>", link),
	)
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	return err
}

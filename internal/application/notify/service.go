// Package notify is the outbound notification channel: it picks the delivery
// medium from the identifier kind (email vs E.164 phone) and renders the
// message bodies.
package notify

import (
	"context"
	"fmt"

	"github.com/zycare/auth-api/internal/infrastructure/smtp"
	"github.com/zycare/auth-api/internal/infrastructure/sns"
	"github.com/zycare/auth-api/internal/pkg/validate"
)

type Service struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
	brand  string
}

func NewService(mailer smtp.Mailer, sms sns.SMSSender, brand string) *Service {
	return &Service{mailer: mailer, sms: sms, brand: brand}
}

// SendCode delivers a one-time code to the identifier's channel.
func (s *Service) SendCode(ctx context.Context, identifier, name, otp string) error {
	_, kind, err := validate.Identifier(identifier)
	if err != nil {
		return err
	}
	if kind == validate.KindPhone {
		if s.sms == nil {
			return fmt.Errorf("sms channel not configured")
		}
		return s.sms.SendSMS(ctx, identifier, fmt.Sprintf("%s login code: %s. Expires in 10 minutes.", s.brand, otp))
	}
	subject := fmt.Sprintf("%s - Your OTP Code", s.brand)
	return s.mailer.SendEmail(ctx, identifier, subject, s.codeBody(name, otp))
}

// SendWelcome delivers the one-time welcome message after the first
// successful verification.
func (s *Service) SendWelcome(ctx context.Context, identifier, name string) error {
	_, kind, err := validate.Identifier(identifier)
	if err != nil {
		return err
	}
	if kind == validate.KindPhone {
		if s.sms == nil {
			return fmt.Errorf("sms channel not configured")
		}
		return s.sms.SendSMS(ctx, identifier, fmt.Sprintf("Welcome to %s, %s! Your account is ready.", s.brand, name))
	}
	subject := fmt.Sprintf("Welcome to %s", s.brand)
	return s.mailer.SendEmail(ctx, identifier, subject, s.welcomeBody(name))
}

func (s *Service) codeBody(name, otp string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #007bff; padding: 20px; text-align: center; color: white;">
    <h1 style="margin: 0;">%s</h1>
  </div>
  <div style="padding: 30px; background-color: #f8f9fa;">
    <p>Hello <strong>%s</strong>,</p>
    <p>Your OTP for login is:</p>
    <div style="background-color: white; padding: 20px; border-radius: 8px; text-align: center; margin: 20px 0; border: 2px solid #007bff;">
      <h2 style="color: #007bff; letter-spacing: 5px; margin: 0;">%s</h2>
    </div>
    <p style="color: #666;">This OTP will expire in 10 minutes.</p>
    <p style="color: #666;">If you didn't request this OTP, please ignore this email.</p>
  </div>
</div>`, s.brand, name, otp)
}

func (s *Service) welcomeBody(name string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #007bff; padding: 20px; text-align: center; color: white;">
    <h1 style="margin: 0;">Welcome to %s</h1>
  </div>
  <div style="padding: 30px; background-color: #f8f9fa;">
    <p>Hello <strong>%s</strong>,</p>
    <p>Thank you for joining %s! We're excited to help you with your healthcare needs.</p>
    <ul>
      <li>AI-powered symptom checker</li>
      <li>Connect with doctors</li>
      <li>Book appointments</li>
      <li>Access your medical records</li>
    </ul>
    <p>If you have any questions, feel free to reach out to our support team.</p>
  </div>
</div>`, s.brand, name, s.brand)
}

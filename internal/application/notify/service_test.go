package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zycare/auth-api/internal/domain"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func TestSendCode_Email(t *testing.T) {
	ml, sms := &mockMailer{}, &mockSMS{}
	ml.On("SendEmail", mock.Anything, "a@b.com", mock.MatchedBy(func(subject string) bool {
		return subject == "ZYCARE - Your OTP Code"
	}), mock.MatchedBy(func(body string) bool {
		return len(body) > 0
	})).Return(nil)

	svc := NewService(ml, sms, "ZYCARE")
	require.NoError(t, svc.SendCode(context.Background(), "a@b.com", "Ana", "123456"))

	ml.AssertExpectations(t)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_EmailBodyContainsCodeAndName(t *testing.T) {
	ml := &mockMailer{}
	var gotBody string
	ml.On("SendEmail", mock.Anything, "a@b.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotBody = args.String(3) }).
		Return(nil)

	svc := NewService(ml, nil, "ZYCARE")
	require.NoError(t, svc.SendCode(context.Background(), "a@b.com", "Ana", "042137"))

	assert.Contains(t, gotBody, "042137")
	assert.Contains(t, gotBody, "Ana")
}

func TestSendCode_Phone(t *testing.T) {
	ml, sms := &mockMailer{}, &mockSMS{}
	sms.On("SendSMS", mock.Anything, "+5511987654321", mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)

	svc := NewService(ml, sms, "ZYCARE")
	require.NoError(t, svc.SendCode(context.Background(), "+5511987654321", "Ana", "123456"))

	sms.AssertExpectations(t)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_Phone_NoSMSChannel(t *testing.T) {
	svc := NewService(&mockMailer{}, nil, "ZYCARE")
	err := svc.SendCode(context.Background(), "+5511987654321", "Ana", "123456")
	require.Error(t, err)
}

func TestSendCode_MalformedIdentifier(t *testing.T) {
	svc := NewService(&mockMailer{}, &mockSMS{}, "ZYCARE")
	err := svc.SendCode(context.Background(), "nope", "Ana", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendWelcome_Email(t *testing.T) {
	ml := &mockMailer{}
	var gotBody string
	ml.On("SendEmail", mock.Anything, "a@b.com", "Welcome to ZYCARE", mock.Anything).
		Run(func(args mock.Arguments) { gotBody = args.String(3) }).
		Return(nil)

	svc := NewService(ml, nil, "ZYCARE")
	require.NoError(t, svc.SendWelcome(context.Background(), "a@b.com", "Ana"))

	assert.Contains(t, gotBody, "Ana")
	assert.Contains(t, gotBody, "ZYCARE")
}

func TestSendWelcome_Phone(t *testing.T) {
	sms := &mockSMS{}
	sms.On("SendSMS", mock.Anything, "+5511987654321", mock.Anything).Return(nil)

	svc := NewService(&mockMailer{}, sms, "ZYCARE")
	require.NoError(t, svc.SendWelcome(context.Background(), "+5511987654321", "Ana"))
	sms.AssertExpectations(t)
}

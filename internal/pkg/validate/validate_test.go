package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zycare/auth-api/internal/domain"
)

func TestIdentifier_Email_Normalized(t *testing.T) {
	got, kind, err := Identifier("  Ana.Lima@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ana.lima@example.com", got)
	assert.Equal(t, KindEmail, kind)
}

func TestIdentifier_Phone_E164(t *testing.T) {
	got, kind, err := Identifier("+5511987654321")
	require.NoError(t, err)
	assert.Equal(t, "+5511987654321", got)
	assert.Equal(t, KindPhone, kind)
}

func TestIdentifier_Malformed(t *testing.T) {
	cases := []string{"", "not-an-identifier", "5511987654321", "+0123456789", "a@", "@b.com"}
	for _, c := range cases {
		_, _, err := Identifier(c)
		require.Error(t, err, "input %q", c)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), "input %q", c)
	}
}

func TestStruct_VerifyCodeRequest(t *testing.T) {
	ok := domain.VerifyCodeRequest{Identifier: "a@b.com", Code: "123456"}
	assert.NoError(t, Struct(ok))

	bad := []domain.VerifyCodeRequest{
		{Identifier: "a@b.com", Code: "12345"},
		{Identifier: "a@b.com", Code: "12345a"},
		{Identifier: "a@b.com"},
		{Code: "123456"},
	}
	for _, req := range bad {
		assert.Error(t, Struct(req), "request %+v", req)
	}
}

func TestStruct_RequestCodeRequest_RoleSet(t *testing.T) {
	assert.NoError(t, Struct(domain.RequestCodeRequest{Identifier: "a@b.com", Role: "doctor"}))
	assert.NoError(t, Struct(domain.RequestCodeRequest{Identifier: "a@b.com"}))
	assert.Error(t, Struct(domain.RequestCodeRequest{Identifier: "a@b.com", Role: "admin"}))
}

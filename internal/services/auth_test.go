package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/ctxutil"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	as := NewAuthService(testLogger(t), "secret", time.Minute)
	userID := uuid.New()
	token, err := as.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	ctx, err := as.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.TokenString != token {
		t.Fatalf("request data: %+v", rd)
	}
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	as := NewAuthService(testLogger(t), "secret", time.Minute)
	other := NewAuthService(testLogger(t), "other", time.Minute)
	foreign, _ := other.GenerateAccessToken(uuid.New())

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	expiredToken, _ := expired.SignedString([]byte("secret"))

	notUUID := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}})
	notUUIDToken, _ := notUUID.SignedString([]byte("secret"))

	for name, tok := range map[string]string{
		"empty":    "",
		"garbage":  "abc.def.ghi",
		"foreign":  foreign,
		"expired":  expiredToken,
		"not-uuid": notUUIDToken,
	} {
		if _, err := as.SetContextFromToken(context.Background(), tok); !errors.Is(err, perrors.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepath/core"
)

func newIssuer(secret string) *Issuer {
	return NewIssuer(&core.Config{
		AppName: "CoursePath",
		Server:  core.ServerConfig{SecretKey: secret, JWTExpirationDelta: time.Hour},
	})
}

func TestIssuer_NewClaims(t *testing.T) {
	iss := newIssuer("secret")

	tests := []struct {
		name        string
		studentID   string
		admin       bool
		wantStudent bool
		wantAdmin   bool
		wantRoles   []string
	}{
		{name: "student", studentID: "101", wantStudent: true, wantRoles: []string{RoleStudent}},
		{name: "student admin", studentID: "101", admin: true, wantStudent: true, wantAdmin: true, wantRoles: []string{RoleStudent, RoleAdmin}},
		{name: "no student", wantAdmin: true, wantRoles: []string{RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := iss.NewClaims(tt.studentID, tt.admin)
			assert.Equal(t, tt.studentID, claims.Subject)
			assert.Equal(t, tt.wantStudent, claims.IsStudent)
			assert.Equal(t, tt.wantAdmin, claims.IsAdmin)
			assert.Equal(t, tt.wantRoles, claims.Roles)
			assert.Equal(t, tt.wantAdmin, claims.HasRole(RoleAdmin))
		})
	}
}

func TestIssuer_ParseToken(t *testing.T) {
	iss := newIssuer("secret")

	valid, err := iss.Token(context.Background(), "101")
	require.NoError(t, err)

	foreign, err := newIssuer("other").Token(context.Background(), "101")
	require.NoError(t, err)

	nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := iss.Token(context.Background(), "101")
	nowFunc = time.Now // reset
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: valid},
		{name: "garbage", token: "lol", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "expired", token: expired, wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := iss.ParseToken(tt.token)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "101", claims.Subject)
			assert.True(t, claims.IsStudent)
		})
	}
}

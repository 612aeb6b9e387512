package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"event-ticketing/internal/auth"
	"event-ticketing/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, models.RoleUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.ID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(1, models.RoleAdmin)
	assert.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	other := auth.NewIssuer("different-secret", time.Hour)

	token, err := issuer.Issue(1, models.RoleUser)
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(1, models.RoleUser)
	assert.NoError(t, err)

	_, err = issuer.Verify(token + "x")
	assert.Error(t, err)

	_, err = issuer.Verify("not-a-token")
	assert.Error(t, err)
}

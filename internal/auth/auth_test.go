package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

func TestTrustPolicyAllowsAnonymous(t *testing.T) {
	require.NoError(t, TrustPolicy{}.Authorize(context.Background(), ActionDeleteUser))
}

func TestRolePolicy(t *testing.T) {
	policy := NewRolePolicy()

	require.ErrorIs(t, policy.Authorize(context.Background(), ActionListUsers), ErrUnauthenticated)

	student := WithActor(context.Background(), Actor{ID: "s1", Role: models.RoleStudent})
	require.ErrorIs(t, policy.Authorize(student, ActionListUsers), ErrForbidden)
	require.NoError(t, policy.Authorize(student, ActionCreateSubmission))
	require.ErrorIs(t, policy.Authorize(student, ActionGradeSubmission), ErrForbidden)

	instructor := WithActor(context.Background(), Actor{ID: "i1", Role: models.RoleInstructor})
	require.NoError(t, policy.Authorize(instructor, ActionGradeSubmission))
	require.ErrorIs(t, policy.Authorize(instructor, ActionDeleteUser), ErrForbidden)

	admin := WithActor(context.Background(), Actor{ID: "a1", Role: models.RoleAdmin})
	require.NoError(t, policy.Authorize(admin, ActionDeleteUser))

	require.NoError(t, policy.Authorize(context.Background(), Action("unguarded")))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleInstructor}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	actor, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, Actor{ID: "u-1", Email: "a@x.com", Role: models.RoleInstructor}, actor)
}

func TestTokenRejectsForeignSignatureAndExpiry(t *testing.T) {
	user := models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleAdmin}

	token, err := NewTokenIssuer("other", time.Hour).Issue(user)
	require.NoError(t, err)
	_, err = NewTokenIssuer("secret", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	issuer := NewTokenIssuer("secret", time.Minute)
	token, err = issuer.Issue(user)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = issuer.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorizeOwner(t *testing.T) {
	require.NoError(t, AuthorizeOwner(context.Background(), "anyone"))

	student := WithActor(context.Background(), Actor{ID: "s1", Email: "ann@x.com", Role: models.RoleStudent})
	require.NoError(t, AuthorizeOwner(student, "ann@x.com"))
	require.ErrorIs(t, AuthorizeOwner(student, "bob@x.com"), ErrForbidden)
	require.ErrorIs(t, AuthorizeOwner(student, "Ann"), ErrForbidden)

	instructor := WithActor(context.Background(), Actor{ID: "i1", Email: "t@x.com", Role: models.RoleInstructor})
	require.NoError(t, AuthorizeOwner(instructor, "bob@x.com"))
}

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmyway/internal/auth"
	"learnmyway/internal/model"
)

type fakeUserRepo map[string]*model.User

func (r fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r[user.ID] = user
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return r[id], nil
}

func (r fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r[user.ID] = user
	return nil
}

func (r fakeUserRepo) ListByClass(_ context.Context, _ string) ([]*model.User, error) {
	return nil, nil
}

func TestVerifyRoundTrip(t *testing.T) {
	users := fakeUserRepo{
		"u1": {ID: "u1", Name: "Arnold", Class: "7A", Role: model.RoleStudent},
	}
	v := auth.NewTokenVerifier("secret", users)

	token, err := v.IssueToken("u1", time.Hour)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{
		UserID:          "u1",
		Role:            model.RoleStudent,
		ClassAssignment: "7A",
	}, identity)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	users := fakeUserRepo{"u1": {ID: "u1", Role: model.RoleStudent}}
	v := auth.NewTokenVerifier("secret", users)

	_, err := v.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// Signed with a different secret.
	other := auth.NewTokenVerifier("other-secret", users)
	token, err := other.IssueToken("u1", time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	users := fakeUserRepo{"u1": {ID: "u1", Role: model.RoleStudent}}
	v := auth.NewTokenVerifier("secret", users)

	token, err := v.IssueToken("u1", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyUnknownUser(t *testing.T) {
	v := auth.NewTokenVerifier("secret", fakeUserRepo{})

	token, err := v.IssueToken("ghost", time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}

func TestVerifyDefaultsRoleUnknown(t *testing.T) {
	users := fakeUserRepo{"u1": {ID: "u1", Class: "7A"}}
	v := auth.NewTokenVerifier("secret", users)

	token, err := v.IssueToken("u1", time.Hour)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUnknown, identity.Role)
}

package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestIssuer_IssueAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	sub := Subject{ID: "42", Role: "admin", IsAdmin: true}

	token, issued, err := iss.IssueAccess(sub)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := iss.Parse(token, KindAccess)
	require.NoError(t, err)

	assert.Equal(t, KindAccess, claims.Type)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, issued.ID, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 2*time.Second)
}

func TestIssuer_IssueRefresh_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	token, _, err := iss.IssueRefresh(Subject{ID: "7"})
	require.NoError(t, err)

	claims, err := iss.Parse(token, KindRefresh)
	require.NoError(t, err)

	assert.Equal(t, KindRefresh, claims.Type)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestIssuer_PairHasDistinctIDsAndHorizons(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	sub := Subject{ID: "1"}

	_, access, err := iss.IssueAccess(sub)
	require.NoError(t, err)
	_, refresh, err := iss.IssueRefresh(sub)
	require.NoError(t, err)

	assert.NotEqual(t, access.ID, refresh.ID)
	assert.True(t, access.ExpiresAt.Before(refresh.ExpiresAt.Time))
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	sub := Subject{ID: "1"}

	access, _, err := iss.IssueAccess(sub)
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefresh(sub)
	require.NoError(t, err)

	t.Run("access presented as refresh", func(t *testing.T) {
		_, err := iss.Parse(access, KindRefresh)
		assert.Error(t, err)
	})

	t.Run("refresh presented as access", func(t *testing.T) {
		_, err := iss.Parse(refresh, KindAccess)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not-a-valid-jwt", KindAccess)
		assert.Error(t, err)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := newTestIssuer()
		other.AccessSecret = []byte("other-secret")
		_, err := other.Parse(access, KindAccess)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := iss.Parse(access, Kind("session"))
		assert.ErrorIs(t, err, ErrWrongKind)
	})
}

func TestIssuer_Parse_SameSecretWrongKind(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	iss.RefreshSecret = iss.AccessSecret

	refresh, _, err := iss.IssueRefresh(Subject{ID: "1"})
	require.NoError(t, err)

	_, err = iss.Parse(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestIssuer_Parse_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	iss := newTestIssuer()
	iss.Now = func() time.Time { return now }

	token, _, err := iss.IssueAccess(Subject{ID: "1"})
	require.NoError(t, err)

	_, err = iss.Parse(token, KindAccess)
	require.NoError(t, err)

	iss.Now = func() time.Time { return now.Add(16 * time.Minute) }
	_, err = iss.Parse(token, KindAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_Parse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	claims := Claims{
		Type: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(iss.AccessSecret)
	require.NoError(t, err)

	_, err = iss.Parse(token, KindAccess)
	assert.ErrorIs(t, err, ErrUnexpectedSignMethod)
}

func TestIssuer_Issue_RequiresSubjectAndSecret(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	_, _, err := iss.IssueAccess(Subject{})
	assert.ErrorIs(t, err, ErrMissingSubject)

	iss.AccessSecret = nil
	_, _, err = iss.IssueAccess(Subject{ID: "1"})
	assert.Error(t, err)
}

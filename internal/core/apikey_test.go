package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyService_Create(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)

	var insertedHash string
	db.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "INSERT INTO api_keys")
	}), mock.Anything).Run(func(args mock.Arguments) {
		insertedHash = args.Get(2).([]any)[2].(string)
	}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	key, rawKey, err := svc.Create(context.Background(), "ci-pipeline", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rawKey, "wfx_"))
	assert.Equal(t, rawKey[:12], key.KeyPrefix)
	assert.Equal(t, "ci-pipeline", key.Name)
	assert.Equal(t, []string{"*:*"}, key.Scopes)

	// The stored hash must match what the auth middleware computes.
	hash := sha256.Sum256([]byte(rawKey))
	assert.Equal(t, hex.EncodeToString(hash[:]), insertedHash)

	db.AssertExpectations(t)
}

func TestAPIKeyService_Revoke_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.Revoke(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	db.AssertExpectations(t)
}

func TestAPIKeyService_List_Pagination(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)

	keyScan := func(id string) func(dest ...any) error {
		return func(dest ...any) error {
			*dest[0].(*string) = id
			*dest[1].(*string) = "key-" + id
			*dest[2].(*string) = "wfx_" + id
			*dest[3].(*[]string) = []string{"*:*"}
			return nil
		}
	}

	// limit 2 with 3 rows back means one more page.
	db.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(newMockRows(keyScan("k1"), keyScan("k2"), keyScan("k3")), nil)

	keys, hasMore, err := svc.List(context.Background(), 2, "")
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, keys, 2)
	assert.Equal(t, "k1", keys[0].ID)
	assert.Equal(t, "k2", keys[1].ID)
	db.AssertExpectations(t)
}

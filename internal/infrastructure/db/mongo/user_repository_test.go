package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/userhub/auth-server/internal/core/domain"
)

const ns = "test.users"

func userDoc(id, email string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Alice"},
		{Key: "email", Value: email},
		{Key: "password_hash", Value: "$2a$04$hash"},
		{Key: "is_active", Value: true},
		{Key: "role", Value: "Admin"},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create success", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@x.com", IsActive: true})
		require.NoError(mt, err)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(context.Background(), &domain.User{ID: "u2", Email: "a@x.com"})
		assert.ErrorIs(mt, err, domain.ErrDuplicateEmail)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("u1", "a@x.com")))

		u, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.ID)
		assert.Equal(mt, domain.RoleAdmin, u.Role)
		assert.Nil(mt, u.RefreshToken)
		assert.Nil(mt, u.RefreshTokenExpiry)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc("u1", "a@x.com"),
			userDoc("u2", "b@x.com"),
		))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "b@x.com", users[1].Email)
	})

	mt.Run("clear refresh token on unknown user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.ClearRefreshToken(context.Background(), "missing")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("set refresh token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.SetRefreshToken(context.Background(), "u1", "rt", time.Now().Add(time.Hour))
		require.NoError(mt, err)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), "missing")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("rotate refresh token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		doc := append(userDoc("u1", "a@x.com"),
			bson.E{Key: "refresh_token", Value: "rt2"},
			bson.E{Key: "refresh_token_expiry", Value: exp},
		)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: doc},
		})

		u, err := repo.RotateRefreshToken(context.Background(), "rt1", "rt2", exp, exp.Add(-time.Hour))
		require.NoError(mt, err)
		require.NotNil(mt, u.RefreshToken)
		assert.Equal(mt, "rt2", *u.RefreshToken)
		assert.True(mt, u.RefreshTokenExpiry.Equal(exp))
	})

	mt.Run("rotate stale refresh token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.RotateRefreshToken(context.Background(), "stale", "rt3", time.Now(), time.Now())
		assert.ErrorIs(mt, err, domain.ErrInvalidOrExpiredRefreshToken)
	})
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertEvent(context.Background(), domain.SessionEvent{UserID: "u1", Kind: domain.EventLogin, At: time.Now()})
		require.NoError(mt, err)
	})
}

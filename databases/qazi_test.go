package databases_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/darul-qaza/darul-qaza-api/databases"
	"github.com/darul-qaza/darul-qaza-api/databases/mocks"
	"github.com/darul-qaza/darul-qaza-api/models"
)

func TestEnsureHeadQazi_NoEnvIsNoop(t *testing.T) {
	t.Setenv("QAZI_HEAD_EMAIL", "")

	db := &mocks.DatabaseHelper{}
	assert.NoError(t, databases.EnsureHeadQazi(db))
	db.AssertNotCalled(t, "Collection", mock.Anything)
}

func TestEnsureHeadQazi_ExistingAccountIsKept(t *testing.T) {
	t.Setenv("QAZI_HEAD_EMAIL", "Qazi@DarulQaza.org")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil)

	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "users").Return(conn)

	assert.NoError(t, databases.EnsureHeadQazi(db))
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestEnsureHeadQazi_MissingPassword(t *testing.T) {
	t.Setenv("QAZI_HEAD_EMAIL", "qazi@darulqaza.org")
	t.Setenv("QAZI_HEAD_PASSWORD", "")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "users").Return(conn)

	err := databases.EnsureHeadQazi(db)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "QAZI_HEAD_PASSWORD")
}

func TestEnsureHeadQazi_CreatesAccount(t *testing.T) {
	t.Setenv("QAZI_HEAD_EMAIL", "Qazi@DarulQaza.org")
	t.Setenv("QAZI_HEAD_PASSWORD", "secret-password")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	var inserted models.User
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("InsertOne", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(models.User)
		}).
		Return(nil, nil)

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "users").Return(conn)

	assert.NoError(t, databases.EnsureHeadQazi(db))

	// Email is normalized to lower case and the password is stored hashed
	assert.Equal(t, "qazi@darulqaza.org", inserted.Details.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(inserted.Details.Password), []byte("secret-password")))
	assert.Contains(t, inserted.Details.Roles, "qazi")
	assert.Contains(t, inserted.Details.Roles, "admin")
}

func TestEnsureHeadQazi_LookupError(t *testing.T) {
	t.Setenv("QAZI_HEAD_EMAIL", "qazi@darulqaza.org")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(errors.New("mocked-error"))

	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "users").Return(conn)

	assert.Error(t, databases.EnsureHeadQazi(db))
}

package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/databases/mocks"
	"github.com/dnounce/dnounce-api/models"
)

func TestVoteDatabase_Tally(t *testing.T) {
	ctx := context.Background()
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("All", ctx, mock.Anything).Return(nil).Run(fillCursor(
		bson.M{"_id": models.VoteKeep, "count": 3},
		bson.M{"_id": models.VoteDelete, "count": 5},
		bson.M{"_id": "abstain", "count": 9},
	))
	cursor.On("Close", ctx).Return(nil)
	collectionHelper.On("Aggregate", ctx, mock.Anything).Return(cursor, nil)
	dbHelper.On("Collection", "votes").Return(collectionHelper)

	keep, remove, err := databases.NewVoteDatabase(dbHelper).Tally(ctx, "111111")
	assert.NoError(t, err)
	assert.Equal(t, 3, keep)
	assert.Equal(t, 5, remove)
}

func TestVoteDatabase_TallyError(t *testing.T) {
	ctx := context.Background()
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("Aggregate", ctx, mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "votes").Return(collectionHelper)

	_, _, err := databases.NewVoteDatabase(dbHelper).Tally(ctx, "111111")
	assert.EqualError(t, err, "mocked-error")
}

func TestCommentDatabase_FindByCaseID(t *testing.T) {
	ctx := context.Background()
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("All", ctx, mock.Anything).Return(nil).Run(fillCursor(
		bson.M{"_id": "c1", "caseId": "111111", "body": "hello"},
	))
	cursor.On("Close", ctx).Return(nil)
	collectionHelper.On("Find", ctx, bson.M{"caseId": "111111"}, mock.Anything).Return(cursor, nil)
	dbHelper.On("Collection", "comments").Return(collectionHelper)

	comments, err := databases.NewCommentDatabase(dbHelper).FindByCaseID(ctx, "111111", 50)
	assert.NoError(t, err)
	assert.Equal(t, []models.Comment{{ID: "c1", CaseID: "111111", Body: "hello"}}, comments)
}

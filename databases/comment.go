package databases

// go generate: mockery --name CommentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnounce/dnounce-api/models"
)

const commentName = "comments"

// CommentDatabase contains the methods to use with the comment database
type CommentDatabase interface {
	InsertOne(ctx context.Context, c *models.Comment) error
	FindByCaseID(ctx context.Context, caseID string, limit int) ([]models.Comment, error)
}

type commentDatabase struct {
	db DatabaseHelper
}

// NewCommentDatabase initializes a new instance of comment database with the provided db connection
func NewCommentDatabase(db DatabaseHelper) CommentDatabase {
	return &commentDatabase{
		db: db,
	}
}

func (c *commentDatabase) InsertOne(ctx context.Context, comment *models.Comment) error {
	_, err := c.db.Collection(commentName).InsertOne(ctx, comment)
	return translateError(err)
}

// FindByCaseID returns the case's comments oldest first.
func (c *commentDatabase) FindByCaseID(ctx context.Context, caseID string, limit int) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	curr, err := c.db.Collection(commentName).Find(ctx, bson.M{"caseId": caseID}, opts)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)

	comments := []models.Comment{}
	if err := curr.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

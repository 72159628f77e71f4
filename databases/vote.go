package databases

// go generate: mockery --name VoteDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnounce/dnounce-api/models"
)

const voteName = "votes"

// VoteDatabase contains the methods to use with the vote database
type VoteDatabase interface {
	InsertOne(ctx context.Context, v *models.Vote) error
	Tally(ctx context.Context, caseID string) (keep, remove int, err error)
	EnsureIndexes(ctx context.Context) error
}

type voteDatabase struct {
	db DatabaseHelper
}

// NewVoteDatabase initializes a new instance of vote database with the provided db connection
func NewVoteDatabase(db DatabaseHelper) VoteDatabase {
	return &voteDatabase{
		db: db,
	}
}

// InsertOne stores a vote. A second vote by the same voter on the same case
// returns ErrDuplicate.
func (v *voteDatabase) InsertOne(ctx context.Context, vote *models.Vote) error {
	_, err := v.db.Collection(voteName).InsertOne(ctx, vote)
	return translateError(err)
}

type choiceCount struct {
	Choice string `bson:"_id"`
	Count  int    `bson:"count"`
}

func (v *voteDatabase) Tally(ctx context.Context, caseID string) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"caseId": caseID}}},
		{{Key: "$group", Value: bson.M{"_id": "$choice", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := v.db.Collection(voteName).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var counts []choiceCount
	if err := cur.All(ctx, &counts); err != nil {
		return 0, 0, err
	}
	var keep, remove int
	for _, c := range counts {
		switch c.Choice {
		case models.VoteKeep:
			keep = c.Count
		case models.VoteDelete:
			remove = c.Count
		}
	}
	return keep, remove, nil
}

func (v *voteDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := v.db.Collection(voteName).CreateIndex(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "caseId", Value: 1}, {Key: "voterId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

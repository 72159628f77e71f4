package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

const caseName = "cases"

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	FindByCaseID(ctx context.Context, caseID string) (*models.Case, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Case, error)
	Exists(ctx context.Context, caseID string) (bool, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, c *models.Case) error
	AdvanceLifecycle(ctx context.Context, caseID string, from lifecycle.Stage, to lifecycle.State) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) FindByCaseID(ctx context.Context, caseID string) (*models.Case, error) {
	out := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, bson.M{"caseId": caseID}).Decode(out)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error) {
	cases := []models.Case{}
	curr, err := c.db.Collection(caseName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	if err := curr.All(ctx, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *caseDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Case, error) {
	return c.Find(ctx, filter, newMongoPaginate(limit, page).getPaginatedOpts())
}

func (c *caseDatabase) Exists(ctx context.Context, caseID string) (bool, error) {
	n, err := c.db.Collection(caseName).CountDocuments(ctx, bson.M{"caseId": caseID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *caseDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(caseName).CountDocuments(ctx, filter)
}

func (c *caseDatabase) InsertOne(ctx context.Context, doc *models.Case) error {
	_, err := c.db.Collection(caseName).InsertOne(ctx, doc)
	return translateError(err)
}

// AdvanceLifecycle swaps the stored lifecycle for to, but only while the case
// is still in stage from. It reports whether this call made the change, so two
// sweeps racing on one case advance it once.
func (c *caseDatabase) AdvanceLifecycle(ctx context.Context, caseID string, from lifecycle.Stage, to lifecycle.State) (bool, error) {
	filter := bson.M{"caseId": caseID, "lifecycle.stage": from}
	update := bson.M{"$set": bson.M{"lifecycle": to, "updatedAt": time.Now().UTC()}}
	res, err := c.db.Collection(caseName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (c *caseDatabase) EnsureIndexes(ctx context.Context) error {
	coll := c.db.Collection(caseName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "caseId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lifecycle.stage", Value: 1}, {Key: "lifecycle.stageEndsAt", Value: 1}}},
		{Keys: bson.D{{Key: "defendant.firstName", Value: 1}, {Key: "defendant.lastName", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	for _, idx := range indexes {
		if _, err := coll.CreateIndex(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

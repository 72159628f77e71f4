package databases

// go generate: mockery --name WaitlistDatabase
// go generate: mockery --name SurveyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnounce/dnounce-api/models"
)

const (
	waitlistName = "waitlist_signups"
	surveyName   = "post_submit_surveys"
)

// WaitlistDatabase stores waitlist signups when Airtable is unavailable
type WaitlistDatabase interface {
	Upsert(ctx context.Context, s *models.WaitlistSignup) (created bool, err error)
	Find(ctx context.Context) ([]models.WaitlistSignup, error)
	CountDocuments(ctx context.Context) (int64, error)
}

// SurveyDatabase stores survey responses when Airtable is unavailable
type SurveyDatabase interface {
	InsertOne(ctx context.Context, s *models.SurveyResponse) error
	Find(ctx context.Context) ([]models.SurveyResponse, error)
	CountDocuments(ctx context.Context) (int64, error)
}

type waitlistDatabase struct {
	db DatabaseHelper
}

type surveyDatabase struct {
	db DatabaseHelper
}

// NewWaitlistDatabase initializes a new instance of waitlist database with the provided db connection
func NewWaitlistDatabase(db DatabaseHelper) WaitlistDatabase {
	return &waitlistDatabase{db: db}
}

// NewSurveyDatabase initializes a new instance of survey database with the provided db connection
func NewSurveyDatabase(db DatabaseHelper) SurveyDatabase {
	return &surveyDatabase{db: db}
}

// Upsert inserts the signup unless its email is already registered.
func (w *waitlistDatabase) Upsert(ctx context.Context, s *models.WaitlistSignup) (bool, error) {
	res, err := w.db.Collection(waitlistName).UpdateOne(ctx,
		bson.M{"email": s.Email},
		bson.M{"$setOnInsert": s},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (w *waitlistDatabase) Find(ctx context.Context) ([]models.WaitlistSignup, error) {
	curr, err := w.db.Collection(waitlistName).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)

	out := []models.WaitlistSignup{}
	if err := curr.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *waitlistDatabase) CountDocuments(ctx context.Context) (int64, error) {
	return w.db.Collection(waitlistName).CountDocuments(ctx, bson.M{})
}

func (s *surveyDatabase) InsertOne(ctx context.Context, resp *models.SurveyResponse) error {
	_, err := s.db.Collection(surveyName).InsertOne(ctx, resp)
	return translateError(err)
}

func (s *surveyDatabase) Find(ctx context.Context) ([]models.SurveyResponse, error) {
	curr, err := s.db.Collection(surveyName).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)

	out := []models.SurveyResponse{}
	if err := curr.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *surveyDatabase) CountDocuments(ctx context.Context) (int64, error) {
	return s.db.Collection(surveyName).CountDocuments(ctx, bson.M{})
}

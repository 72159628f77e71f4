package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnounce/dnounce-api/models"
)

const schedulerLockName = "scheduler_locks"

// SchedulerLockDatabase coordinates cron jobs across instances
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, owner string) error
}

type schedulerLockDatabase struct {
	db  DatabaseHelper
	now func() time.Time
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{db: db, now: time.Now}
}

// TryAcquireLock takes the named lock for owner until ttl from now. It succeeds
// when the lock is free, expired, or already held by owner. Losing the upsert
// race to another instance surfaces as a duplicate key and reports false.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := s.now().UTC()
	filter := bson.M{
		"_id": name,
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$lt": now}},
			bson.M{"owner": owner},
		},
	}
	lock := models.SchedulerLock{ID: name, Owner: owner, AcquiredAt: now, ExpiresAt: now.Add(ttl)}
	// _id comes from the filter on insert and must not appear in $set.
	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"acquiredAt": lock.AcquiredAt,
		"expiresAt":  lock.ExpiresAt,
	}}

	_, err := s.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	switch translateError(err) {
	case nil:
		return true, nil
	case ErrDuplicate:
		return false, nil
	}
	return false, err
}

// ReleaseLock drops the lock if owner still holds it.
func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, owner string) error {
	_, err := s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": name, "owner": owner})
	return err
}

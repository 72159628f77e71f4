package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxPageSize caps a single page of cases.
const MaxPageSize = 100

type mongoPaginate struct {
	limit int64
	page  int64
}

// newMongoPaginate clamps limit to [1, MaxPageSize] and page to >= 1.
func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

// getPaginatedOpts returns a page of results, newest first.
func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	return options.Find().
		SetLimit(l).
		SetSkip(skip).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

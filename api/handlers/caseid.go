package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/models"
)

const caseIDAttempts = 5

var errCaseIDExhausted = errors.New("could not allocate a unique case id")

var sixDigits = big.NewInt(1000000)

// randomCaseID is EVB or OPB followed by six random digits.
func randomCaseID(t models.CaseType) (string, error) {
	n, err := rand.Int(rand.Reader, sixDigits)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", t.Prefix(), n.Int64()), nil
}

// newCaseID draws ids until one is unused.
func newCaseID(ctx context.Context, db databases.CaseDatabase, t models.CaseType) (string, error) {
	for i := 0; i < caseIDAttempts; i++ {
		id, err := randomCaseID(t)
		if err != nil {
			return "", err
		}
		taken, err := db.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", errCaseIDExhausted
}

package models

import (
	"time"

	"github.com/dnounce/dnounce-api/lifecycle"
)

// Vote choices
const (
	VoteKeep   = "keep"
	VoteDelete = "delete"
)

// Vote holds the structure for the votes collection. One vote per voter and case.
type Vote struct {
	ID        string    `json:"id" bson:"_id"`
	CaseID    string    `json:"caseId" bson:"caseId"`
	VoterID   string    `json:"voterId" bson:"voterId"`
	Choice    string    `json:"choice" bson:"choice"`
	Reason    string    `json:"reason" bson:"reason"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// VoteRequest is the body of a vote submission.
type VoteRequest struct {
	VoterID string `json:"voterId"`
	Choice  string `json:"choice"`
	Reason  string `json:"reason"`
}

// VoteTally is the closed-ballot count, published only after a verdict.
type VoteTally struct {
	CaseID  string          `json:"caseId"`
	Keep    int             `json:"keep"`
	Delete  int             `json:"delete"`
	Verdict lifecycle.Stage `json:"verdict"`
}

// Comment holds the structure for the comments collection.
type Comment struct {
	ID        string         `json:"id" bson:"_id"`
	CaseID    string         `json:"caseId" bson:"caseId"`
	Author    string         `json:"author" bson:"author"`
	Role      lifecycle.Role `json:"role" bson:"role"`
	Body      string         `json:"body" bson:"body"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Interaction kinds a viewer can record on a case card.
const (
	InteractionInformative = "informative"
	InteractionNotUseful   = "not_useful"
	InteractionFollow      = "follow"
	InteractionPin         = "pin"
)

// InteractionRequest is the body of a reaction or follow/pin toggle.
type InteractionRequest struct {
	Kind   string `json:"kind"`
	AnonID string `json:"anonId,omitempty"`
}

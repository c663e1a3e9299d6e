package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is a single company research result stored in MongoDB.
// Data is the upstream research payload and is stored without validation.
type Record struct {
	ID          primitive.ObjectID `json:"id"          bson:"_id,omitempty"`
	CompanyName string             `json:"companyName" bson:"companyName"`
	Data        bson.M             `json:"data"        bson:"data"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
}

// Summary is the list view of a Record; the payload is omitted.
type Summary struct {
	ID          primitive.ObjectID `json:"id"          bson:"_id"`
	CompanyName string             `json:"companyName" bson:"companyName"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
}

// Envelope is what POST /api/research returns. When the record could not be
// persisted, ID is a temporary token and Note says why.
type Envelope struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Data        bson.M    `json:"data"`
	CreatedAt   time.Time `json:"createdAt"`
	Note        string    `json:"note,omitempty"`
}

// EnvelopeFor wraps a persisted record.
func EnvelopeFor(rec *Record) Envelope {
	return Envelope{
		ID:          rec.ID.Hex(),
		CompanyName: rec.CompanyName,
		Data:        rec.Data,
		CreatedAt:   rec.CreatedAt,
	}
}

// CreateRequest is the JSON body for POST /api/research.
type CreateRequest struct {
	CompanyName string `json:"companyName"`
	Data        bson.M `json:"data"`
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	CompanyName string `json:"companyName"`
}

package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// ParseID converts a hex string into an ObjectID. A malformed id yields a
// *CastError for path "_id".
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewCastError("_id", id, "ObjectId", err)
	}
	return oid, nil
}

package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Ids are client-side
// uuids stored under _id, so Put never round-trips for the id and UpdateIf
// can target a document by primary key plus precondition in one filter.
type MongoStore struct {
	client   *mongo.Client
	database string
}

// Connect dials the MongoDB server and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	timeout := 5 * time.Second
	opts := &options.ClientOptions{ServerSelectionTimeout: &timeout}

	client, err := mongo.Connect(ctx, opts.ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, database: database}
}

func (s *MongoStore) coll(collection string) *mongo.Collection {
	return s.client.Database(s.database).Collection(collection)
}

func (s *MongoStore) Put(ctx context.Context, collection, id string, fields Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Fields, error) {
	var doc bson.M
	err := s.coll(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(doc), nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filter Filter) ([]Fields, error) {
	match := bson.M{}
	for k, v := range filter {
		match[k] = v
	}
	cursor, err := s.coll(collection).Find(ctx, match)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Fields
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, fromBSON(doc))
	}
	return results, cursor.Err()
}

func (s *MongoStore) UpdateIf(ctx context.Context, collection, id string, precondition Filter, patch Fields) error {
	match := bson.M{"_id": id}
	for k, v := range precondition {
		match[k] = v
	}
	set := bson.M{}
	for k, v := range patch {
		set[k] = v
	}
	res, err := s.coll(collection).UpdateOne(ctx, match, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a vanished document from a lost race.
		if _, err := s.Get(ctx, collection, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrPreconditionFailed
	}
	return nil
}

// fromBSON normalises a decoded document into Fields, surfacing the Mongo
// primary key under "id" and converting BSON datetimes back to time.Time.
func fromBSON(doc bson.M) Fields {
	fields := Fields{}
	for k, v := range doc {
		if k == "_id" {
			fields["id"] = v
			continue
		}
		if dt, ok := v.(primitive.DateTime); ok {
			fields[k] = dt.Time().UTC()
			continue
		}
		fields[k] = v
	}
	return fields
}

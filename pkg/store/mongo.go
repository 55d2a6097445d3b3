package store

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/model"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "stateflow"
	DefaultMongoCollection = "diagrams"
)

// Mongo stores one record document per diagram, keyed by _id.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and uses database/collection, falling back to
// the defaults when empty.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, unavailable(err, "ping mongo")
	}
	coll := client.Database(database).Collection(collection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updatedAt", Value: -1}},
	}); err != nil {
		client.Disconnect(ctx)
		return nil, unavailable(err, "create mongo index")
	}
	return &Mongo{client: client, coll: coll}, nil
}

// Drop removes the backing collection. Used by tests.
func (s *Mongo) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

func (s *Mongo) Get(ctx context.Context, id string) (*model.Diagram, error) {
	var rec io.Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, NotFound(id)
		}
		return nil, unavailable(err, "get diagram %s", id)
	}
	return io.FromRecord(rec)
}

func (s *Mongo) Put(ctx context.Context, d *model.Diagram) error {
	if err := checkPut(d); err != nil {
		return err
	}
	rec := io.ToRecord(d)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable(err, "put diagram %s", d.ID)
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable(err, "delete diagram %s", id)
	}
	return nil
}

func (s *Mongo) List(ctx context.Context) ([]Summary, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable(err, "list diagrams")
	}
	defer cur.Close(ctx)

	out := []Summary{}
	for cur.Next(ctx) {
		var rec io.Record
		if err := cur.Decode(&rec); err != nil {
			return nil, unavailable(err, "decode diagram")
		}
		d, err := io.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(d))
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable(err, "list diagrams")
	}
	SortSummaries(out)
	return out, nil
}

func (s *Mongo) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*Mongo)(nil)

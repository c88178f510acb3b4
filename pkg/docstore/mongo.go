package docstore

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/errors"
)

// Default database and collection names.
const (
	DefaultDatabase   = "pageprint"
	DefaultCollection = "documents"
)

// record is the BSON shape of one stored document. The asset table is
// kept as a list because the registry does not marshal to BSON itself.
// MongoDB limits a record to 16MB; compact large documents first.
type record struct {
	ID        string          `bson:"_id"`
	CreatedAt time.Time       `bson:"created_at"`
	Document  *canon.Document `bson:"document"`
	Assets    []assets.Asset  `bson:"assets"`
}

// MongoStore keeps documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore connects to uri. Empty database or collection names use
// the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	s := NewMongoStoreFromClient(client, database, collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client; Close leaves it
// connected.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

// Put implements [Store].
func (s *MongoStore) Put(ctx context.Context, doc *canon.Document) (string, error) {
	rec := record{ID: NewID(), CreatedAt: time.Now().UTC(), Document: doc}
	if doc.Assets != nil {
		for _, h := range doc.Assets.Hashes() {
			a, _ := doc.Assets.Lookup(h)
			rec.Assets = append(rec.Assets, a)
		}
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "insert document")
	}
	return rec.ID, nil
}

// Get implements [Store].
func (s *MongoStore) Get(ctx context.Context, id string) (*canon.Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "document %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load document %s", id)
	}
	if rec.Document == nil {
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "record %s has no document", id)
	}
	doc := rec.Document
	doc.Assets = assets.NewRegistry()
	for _, a := range rec.Assets {
		if err := doc.Assets.Add(a); err != nil {
			return nil, err
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete implements [Store].
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete document %s", id)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

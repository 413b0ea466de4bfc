package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ConnectMongo opens a client and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("docstore: mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("docstore: mongo ping: %w", err)
	}
	return client, client.Database(dbName), nil
}

// MongoStore maps collections one-to-one onto MongoDB collections and uses
// change streams for subscriptions. Change streams need a replica set; on a
// standalone server subscriptions fall back to their initial snapshot.
type MongoStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoStore constructs a MongoStore over db.
func NewMongoStore(db *mongo.Database, logger *slog.Logger) *MongoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoStore{db: db, logger: logger}
}

// FetchAll returns every document of collection ordered by id.
func (s *MongoStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if collection == "" {
		return nil, ErrInvalidArgument
	}
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()
	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		doc, err := decodeRaw(cursor.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns a single document.
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateKey(collection, id); err != nil {
		return Document{}, err
	}
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return decodeRaw(raw)
}

// Subscribe delivers the snapshot of target now and after each change
// reported by the collection's change stream.
func (s *MongoStore) Subscribe(ctx context.Context, target Target, fn ChangeFunc) (Unsubscribe, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	unsubscribe, err := watch(ctx, s, target, fn, s.logger, s.changeFeed(target))
	if err == nil {
		return unsubscribe, nil
	}
	var streamErr *changeStreamError
	if !errors.As(err, &streamErr) {
		return nil, err
	}
	s.logger.Warn("docstore change stream unavailable", slog.String("collection", target.Collection), slog.Any("error", streamErr.err))
	initial, err := snapshotOf(ctx, s, target)
	if err != nil {
		return nil, err
	}
	fn(initial)
	return func() {}, nil
}

// changeStreamError marks a failure to open a change stream, as opposed to
// a failure to read the snapshot.
type changeStreamError struct{ err error }

func (e *changeStreamError) Error() string { return "docstore: change stream: " + e.err.Error() }
func (e *changeStreamError) Unwrap() error { return e.err }

func (s *MongoStore) changeFeed(target Target) listenFunc {
	return func(ctx context.Context, trigger func(id string)) (Unsubscribe, error) {
		pipeline := mongo.Pipeline{}
		if target.DocumentID != "" {
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: target.DocumentID}}}})
		}
		stream, err := s.db.Collection(target.Collection).Watch(ctx, pipeline)
		if err != nil {
			return nil, &changeStreamError{err: err}
		}
		go func() {
			defer func() { _ = stream.Close(context.Background()) }()
			for stream.Next(ctx) {
				var event struct {
					DocumentKey struct {
						ID string `bson:"_id"`
					} `bson:"documentKey"`
				}
				if err := stream.Decode(&event); err != nil {
					s.logger.Warn("docstore decode change event", slog.Any("error", err))
					continue
				}
				trigger(event.DocumentKey.ID)
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				s.logger.Warn("docstore change stream closed", slog.String("collection", target.Collection), slog.Any("error", err))
			}
		}()
		return func() {}, nil
	}
}

// CreateOrReplace upserts data under id.
func (s *MongoStore) CreateOrReplace(ctx context.Context, collection, id string, data any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	fields, err := Encode(data)
	if err != nil {
		return err
	}
	doc := bson.M(fields)
	doc["_id"] = id
	_, err = s.db.Collection(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	return err
}

// AppendNew inserts data under a generated id.
func (s *MongoStore) AppendNew(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidArgument
	}
	fields, err := Encode(data)
	if err != nil {
		return "", err
	}
	id := NewID()
	doc := bson.M(fields)
	doc["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrConflict
		}
		return "", err
	}
	return id, nil
}

// Patch merges the named top-level fields into an existing document.
func (s *MongoStore) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	encoded, err := Encode(fields)
	if err != nil {
		return err
	}
	if len(encoded) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: bson.M(encoded)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a document.
func (s *MongoStore) Remove(ctx context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// decodeRaw converts a BSON document to a Document through relaxed
// extended JSON so field values match what the other stores return.
func decodeRaw(raw bson.Raw) (Document, error) {
	idValue, err := raw.LookupErr("_id")
	if err != nil {
		return Document{}, fmt.Errorf("docstore: document without _id: %w", err)
	}
	id, ok := idValue.StringValueOK()
	if !ok {
		oid, isOID := idValue.ObjectIDOK()
		if !isOID {
			return Document{}, fmt.Errorf("docstore: unsupported _id type %s", idValue.Type)
		}
		id = oid.Hex()
	}
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return Document{}, fmt.Errorf("docstore: decode %s: %w", id, err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(ext, &fields); err != nil {
		return Document{}, fmt.Errorf("docstore: decode %s: %w", id, err)
	}
	delete(fields, "_id")
	return Document{ID: id, Data: fields}, nil
}

var _ Store = (*MongoStore)(nil)

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

const pollInterval = 5 * time.Second

// Store implements ports.Store on a MongoDB database. Subscribe uses change
// streams when the deployment supports them (replica sets) and degrades to
// polling against standalone servers.
type Store struct {
	db  *mongo.Database
	log zerolog.Logger
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *mongo.Database, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Insert(ctx context.Context, collection string, rec ports.Record) (string, error) {
	doc := bson.M{}
	for k, v := range rec {
		if k == "id" {
			continue
		}
		doc[k] = v
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

func (s *Store) QueryAll(ctx context.Context, collection string) ([]ports.Record, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *Store) QueryWhere(ctx context.Context, collection, field string, value any) ([]ports.Record, error) {
	if field == "id" {
		return s.find(ctx, collection, idFilter(fmt.Sprintf("%v", value)))
	}
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *Store) Update(ctx context.Context, collection, id string, partial ports.Record) error {
	set := bson.M{}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		set[k] = v
	}

	_, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Clear purges a collection with a single DeleteMany, atomic per collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	_, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Subscribe(collection string, onChange func([]ports.Record)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	go s.watch(ctx, collection, onChange)
	return cancel, nil
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M) ([]ports.Record, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var recs []ports.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		recs = append(recs, toRecord(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return recs, nil
}

func (s *Store) watch(ctx context.Context, collection string, onChange func([]ports.Record)) {
	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		s.log.Warn().Err(err).Str("collection", collection).
			Msg("change streams unavailable, falling back to polling")
		s.poll(ctx, collection, onChange)
		return
	}
	defer stream.Close(context.Background())

	s.push(ctx, collection, onChange)
	for stream.Next(ctx) {
		s.push(ctx, collection, onChange)
	}
}

func (s *Store) poll(ctx context.Context, collection string, onChange func([]ports.Record)) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastFingerprint string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recs, err := s.QueryAll(ctx, collection)
			if err != nil {
				s.log.Warn().Err(err).Str("collection", collection).Msg("poll failed")
				continue
			}
			fp := fingerprint(recs)
			if fp == lastFingerprint {
				continue
			}
			lastFingerprint = fp
			onChange(recs)
		}
	}
}

func (s *Store) push(ctx context.Context, collection string, onChange func([]ports.Record)) {
	recs, err := s.QueryAll(ctx, collection)
	if err != nil {
		s.log.Warn().Err(err).Str("collection", collection).Msg("change feed scan failed")
		return
	}
	onChange(recs)
}

// fingerprint is a cheap change detector for the polling fallback: the
// record count plus the last record's id.
func fingerprint(recs []ports.Record) string {
	last := ""
	if len(recs) > 0 {
		last = recs[len(recs)-1].ID()
	}
	return fmt.Sprintf("%d:%s", len(recs), last)
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func toRecord(doc bson.M) ports.Record {
	rec := make(ports.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				rec["id"] = oid.Hex()
			} else {
				rec["id"] = fmt.Sprintf("%v", v)
			}
			continue
		}
		if dt, ok := v.(primitive.DateTime); ok {
			rec[k] = dt.Time().UTC()
			continue
		}
		rec[k] = v
	}
	return rec
}

package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertResult holds the ids assigned to inserted documents, in order.
type InsertResult struct {
	InsertedIDs []interface{}
}

// UpdateResult reports what an update touched. UpsertedID is nil unless the
// update inserted a new document.
type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID interface{}
}

// DeleteResult reports how many documents were removed.
type DeleteResult struct {
	Deleted int64
}

// FindOptions narrows a Find. Zero values mean no projection, natural order
// and no limit.
type FindOptions struct {
	Projection interface{}
	Sort       interface{}
	Limit      int64
}

// Store runs CRUD operations against one collection. Documents come back as
// bson.D so field order matches what the server stored.
type Store struct {
	coll *mongo.Collection
}

// NewStore wraps coll.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Name returns the collection name.
func (s *Store) Name() string {
	return s.coll.Name()
}

// InsertOne inserts doc.
func (s *Store) InsertOne(ctx context.Context, doc interface{}) (*InsertResult, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", s.Name(), err)
	}
	docLog.Debugf("inserted 1 document into %s", s.Name())
	return &InsertResult{InsertedIDs: []interface{}{res.InsertedID}}, nil
}

// InsertMany inserts docs in order.
func (s *Store) InsertMany(ctx context.Context, docs []interface{}) (*InsertResult, error) {
	if len(docs) == 0 {
		return &InsertResult{}, nil
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", s.Name(), err)
	}
	docLog.Debugf("inserted %d documents into %s", len(res.InsertedIDs), s.Name())
	return &InsertResult{InsertedIDs: res.InsertedIDs}, nil
}

// Find returns every document matching filter. A nil filter matches all.
func (s *Store) Find(ctx context.Context, filter interface{}, opts FindOptions) ([]bson.D, error) {
	findOpts := options.Find()
	if opts.Projection != nil {
		findOpts.SetProjection(opts.Projection)
	}
	if opts.Sort != nil {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := s.coll.Find(ctx, orAll(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", s.Name(), err)
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read cursor from %s: %w", s.Name(), err)
	}
	return docs, nil
}

// FindOne returns the first document matching filter, or nil when there is
// none.
func (s *Store) FindOne(ctx context.Context, filter interface{}) (bson.D, error) {
	var doc bson.D
	err := s.coll.FindOne(ctx, orAll(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", s.Name(), err)
	}
	return doc, nil
}

// UpdateOne applies $set to the first document matching filter, inserting
// one when upsert is true and nothing matches.
func (s *Store) UpdateOne(ctx context.Context, filter, set interface{}, upsert bool) (*UpdateResult, error) {
	res, err := s.coll.UpdateOne(ctx, orAll(filter), setUpdate(set), options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, fmt.Errorf("update in %s: %w", s.Name(), err)
	}
	return updateResult(res), nil
}

// UpdateMany applies $set to every document matching filter.
func (s *Store) UpdateMany(ctx context.Context, filter, set interface{}) (*UpdateResult, error) {
	res, err := s.coll.UpdateMany(ctx, orAll(filter), setUpdate(set))
	if err != nil {
		return nil, fmt.Errorf("update in %s: %w", s.Name(), err)
	}
	return updateResult(res), nil
}

// DeleteOne removes the first document matching filter.
func (s *Store) DeleteOne(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, orAll(filter))
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", s.Name(), err)
	}
	return &DeleteResult{Deleted: res.DeletedCount}, nil
}

// DeleteMany removes every document matching filter. A nil filter empties
// the collection.
func (s *Store) DeleteMany(ctx context.Context, filter interface{}) (*DeleteResult, error) {
	res, err := s.coll.DeleteMany(ctx, orAll(filter))
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", s.Name(), err)
	}
	docLog.Debugf("deleted %d documents from %s", res.DeletedCount, s.Name())
	return &DeleteResult{Deleted: res.DeletedCount}, nil
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, filter interface{}) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, orAll(filter))
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", s.Name(), err)
	}
	return n, nil
}

// Drop removes the collection.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", s.Name(), err)
	}
	docLog.Infof("dropped collection %s", s.Name())
	return nil
}

func orAll(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

func setUpdate(set interface{}) bson.D {
	return bson.D{{Key: "$set", Value: set}}
}

func updateResult(res *mongo.UpdateResult) *UpdateResult {
	return &UpdateResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		UpsertedID: res.UpsertedID,
	}
}

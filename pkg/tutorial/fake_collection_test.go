package tutorial

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/entrhq/pilot/pkg/docstore"
)

// memCollection is an in-memory Collection supporting equality filters,
// inclusion projections and $set updates.
type memCollection struct {
	name    string
	docs    []bson.D
	dropped bool
	fail    map[string]error
}

func newMemCollection() *memCollection {
	return &memCollection{name: "mycollection", fail: map[string]error{}}
}

func (c *memCollection) Name() string { return c.name }

func (c *memCollection) InsertOne(_ context.Context, doc interface{}) (*docstore.InsertResult, error) {
	if err := c.fail["InsertOne"]; err != nil {
		return nil, err
	}
	id, err := c.insert(doc)
	if err != nil {
		return nil, err
	}
	return &docstore.InsertResult{InsertedIDs: []interface{}{id}}, nil
}

func (c *memCollection) InsertMany(_ context.Context, docs []interface{}) (*docstore.InsertResult, error) {
	if err := c.fail["InsertMany"]; err != nil {
		return nil, err
	}
	res := &docstore.InsertResult{}
	for _, doc := range docs {
		id, err := c.insert(doc)
		if err != nil {
			return nil, err
		}
		res.InsertedIDs = append(res.InsertedIDs, id)
	}
	return res, nil
}

func (c *memCollection) insert(doc interface{}) (interface{}, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if id, ok := lookup(d, "_id"); ok {
		c.docs = append(c.docs, d)
		return id, nil
	}
	id := primitive.NewObjectID()
	c.docs = append(c.docs, append(bson.D{{Key: "_id", Value: id}}, d...))
	return id, nil
}

func (c *memCollection) Find(_ context.Context, filter interface{}, opts docstore.FindOptions) ([]bson.D, error) {
	if err := c.fail["Find"]; err != nil {
		return nil, err
	}
	var out []bson.D
	for _, d := range c.docs {
		if matches(d, filter) {
			out = append(out, project(d, opts.Projection))
		}
	}
	return out, nil
}

func (c *memCollection) FindOne(_ context.Context, filter interface{}) (bson.D, error) {
	if err := c.fail["FindOne"]; err != nil {
		return nil, err
	}
	for _, d := range c.docs {
		if matches(d, filter) {
			return d, nil
		}
	}
	return nil, nil
}

func (c *memCollection) UpdateOne(_ context.Context, filter, set interface{}, upsert bool) (*docstore.UpdateResult, error) {
	if err := c.fail["UpdateOne"]; err != nil {
		return nil, err
	}
	for i, d := range c.docs {
		if matches(d, filter) {
			updated, changed := apply(d, set.(bson.D))
			c.docs[i] = updated
			return &docstore.UpdateResult{Matched: 1, Modified: boolCount(changed)}, nil
		}
	}
	if !upsert {
		return &docstore.UpdateResult{}, nil
	}
	id := primitive.NewObjectID()
	doc := append(bson.D{{Key: "_id", Value: id}}, filter.(bson.D)...)
	doc, _ = apply(doc, set.(bson.D))
	c.docs = append(c.docs, doc)
	return &docstore.UpdateResult{UpsertedID: id}, nil
}

func (c *memCollection) UpdateMany(_ context.Context, filter, set interface{}) (*docstore.UpdateResult, error) {
	if err := c.fail["UpdateMany"]; err != nil {
		return nil, err
	}
	res := &docstore.UpdateResult{}
	for i, d := range c.docs {
		if matches(d, filter) {
			updated, changed := apply(d, set.(bson.D))
			c.docs[i] = updated
			res.Matched++
			res.Modified += boolCount(changed)
		}
	}
	return res, nil
}

func (c *memCollection) DeleteOne(_ context.Context, filter interface{}) (*docstore.DeleteResult, error) {
	if err := c.fail["DeleteOne"]; err != nil {
		return nil, err
	}
	for i, d := range c.docs {
		if matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return &docstore.DeleteResult{Deleted: 1}, nil
		}
	}
	return &docstore.DeleteResult{}, nil
}

func (c *memCollection) DeleteMany(_ context.Context, filter interface{}) (*docstore.DeleteResult, error) {
	if err := c.fail["DeleteMany"]; err != nil {
		return nil, err
	}
	kept := c.docs[:0]
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return &docstore.DeleteResult{Deleted: n}, nil
}

func (c *memCollection) Drop(context.Context) error {
	if err := c.fail["Drop"]; err != nil {
		return err
	}
	c.docs = nil
	c.dropped = true
	return nil
}

func lookup(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// sameValue compares across numeric widths, which differ after a bson
// round trip.
func sameValue(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func matches(d bson.D, filter interface{}) bool {
	if filter == nil {
		return true
	}
	for _, cond := range filter.(bson.D) {
		v, ok := lookup(d, cond.Key)
		if !ok || !sameValue(v, cond.Value) {
			return false
		}
	}
	return true
}

func project(d bson.D, projection interface{}) bson.D {
	if projection == nil {
		return d
	}
	include := map[string]bool{}
	for _, e := range projection.(bson.D) {
		include[e.Key] = sameValue(e.Value, 1)
	}
	var out bson.D
	for _, e := range d {
		if include[e.Key] {
			out = append(out, e)
		}
	}
	return out
}

func apply(d bson.D, set bson.D) (bson.D, bool) {
	out := append(bson.D(nil), d...)
	changed := false
	for _, s := range set {
		found := false
		for i := range out {
			if out[i].Key == s.Key {
				found = true
				if !sameValue(out[i].Value, s.Value) {
					out[i].Value = s.Value
					changed = true
				}
			}
		}
		if !found {
			out = append(out, s)
			changed = true
		}
	}
	return out, changed
}

func boolCount(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

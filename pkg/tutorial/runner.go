// Package tutorial walks through create, read, update and delete calls
// against one MongoDB collection and prints every result.
package tutorial

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/entrhq/pilot/pkg/docstore"
)

// Collection is the subset of docstore.Store the walkthrough uses.
type Collection interface {
	Name() string
	InsertOne(ctx context.Context, doc interface{}) (*docstore.InsertResult, error)
	InsertMany(ctx context.Context, docs []interface{}) (*docstore.InsertResult, error)
	Find(ctx context.Context, filter interface{}, opts docstore.FindOptions) ([]bson.D, error)
	FindOne(ctx context.Context, filter interface{}) (bson.D, error)
	UpdateOne(ctx context.Context, filter, set interface{}, upsert bool) (*docstore.UpdateResult, error)
	UpdateMany(ctx context.Context, filter, set interface{}) (*docstore.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*docstore.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}) (*docstore.DeleteResult, error)
	Drop(ctx context.Context) error
}

var _ Collection = (*docstore.Store)(nil)

// Runner executes the walkthrough.
type Runner struct {
	coll  Collection
	out   *printer
	seed  *Seed
	reset bool
	drop  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithSeed replaces the built-in documents.
func WithSeed(seed *Seed) Option {
	return func(r *Runner) {
		if seed != nil {
			r.seed = seed
		}
	}
}

// WithReset empties the collection before the create step.
func WithReset(reset bool) Option {
	return func(r *Runner) {
		r.reset = reset
	}
}

// WithDrop drops the collection after the delete step.
func WithDrop(drop bool) Option {
	return func(r *Runner) {
		r.drop = drop
	}
}

// WithColor highlights printed documents.
func WithColor(color bool) Option {
	return func(r *Runner) {
		r.out.color = color
	}
}

// NewRunner creates a runner writing to w.
func NewRunner(coll Collection, w io.Writer, opts ...Option) *Runner {
	r := &Runner{
		coll: coll,
		out:  &printer{w: w},
		seed: DefaultSeed(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs every step in order and stops at the first error.
func (r *Runner) Run(ctx context.Context) error {
	steps := []func(context.Context) error{
		r.resetCollection,
		r.create,
		r.read,
		r.update,
		r.remove,
		r.dropCollection,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) resetCollection(ctx context.Context) error {
	if !r.reset {
		return nil
	}
	res, err := r.coll.DeleteMany(ctx, nil)
	if err != nil {
		return err
	}
	r.out.printf("Reset: removed %d existing document(s) from %s.\n", res.Deleted, r.coll.Name())
	return nil
}

func (r *Runner) create(ctx context.Context) error {
	r.out.println("\n--- Creating Documents ---")

	one, err := r.coll.InsertOne(ctx, r.seed.First)
	if err != nil {
		return err
	}
	r.out.printf("Inserted single document with ID: %s\n", formatID(one.InsertedIDs[0]))

	many, err := r.coll.InsertMany(ctx, r.seed.others())
	if err != nil {
		return err
	}
	r.out.printf("Inserted multiple documents with IDs: %s\n", formatIDs(many.InsertedIDs))
	return nil
}

func (r *Runner) read(ctx context.Context) error {
	r.out.println("\n--- Reading Documents ---")

	r.out.println("\nAll documents in collection:")
	if err := r.printFind(ctx, nil, docstore.FindOptions{}); err != nil {
		return err
	}

	r.out.println("\nDocuments where city is 'New York':")
	if err := r.printFind(ctx, byCity("New York"), docstore.FindOptions{}); err != nil {
		return err
	}

	r.out.println("\nOne document where age is 24:")
	doc, err := r.coll.FindOne(ctx, bson.D{{Key: "age", Value: 24}})
	if err != nil {
		return err
	}
	if err := r.out.doc("", doc); err != nil {
		return err
	}

	r.out.println("\nDocuments showing only name and city:")
	return r.printFind(ctx, nil, docstore.FindOptions{
		Projection: bson.D{{Key: "name", Value: 1}, {Key: "city", Value: 1}, {Key: "_id", Value: 0}},
	})
}

func (r *Runner) update(ctx context.Context) error {
	r.out.println("\n--- Updating Documents ---")

	res, err := r.coll.UpdateOne(ctx, byName("Alice"),
		bson.D{{Key: "age", Value: 31}, {Key: "status", Value: "updated"}}, false)
	if err != nil {
		return err
	}
	r.out.printf("Matched %d document(s) and modified %d document(s) for Alice.\n", res.Matched, res.Modified)
	if err := r.printFindOne(ctx, "Updated Alice's document:", byName("Alice")); err != nil {
		return err
	}

	res, err = r.coll.UpdateMany(ctx, byCity("New York"), bson.D{{Key: "is_usa", Value: true}})
	if err != nil {
		return err
	}
	r.out.printf("Matched %d document(s) and modified %d document(s) for New York residents.\n", res.Matched, res.Modified)
	r.out.println("Documents where city is 'New York' after batch update:")
	if err := r.printFind(ctx, byCity("New York"), docstore.FindOptions{}); err != nil {
		return err
	}

	res, err = r.coll.UpdateOne(ctx, byName("Eve"),
		bson.D{{Key: "age", Value: 29}, {Key: "country", Value: "Canada"}}, true)
	if err != nil {
		return err
	}
	upserted := "N/A"
	if res.UpsertedID != nil {
		upserted = formatID(res.UpsertedID)
	}
	r.out.printf("Upserted document with ID: %s\n", upserted)
	return r.printFindOne(ctx, "Eve's document:", byName("Eve"))
}

func (r *Runner) remove(ctx context.Context) error {
	r.out.println("\n--- Deleting Documents ---")

	res, err := r.coll.DeleteOne(ctx, byName("Bob"))
	if err != nil {
		return err
	}
	r.out.printf("Deleted %d document(s) for Bob.\n", res.Deleted)
	r.out.println("Documents remaining after deleting Bob:")
	if err := r.printFind(ctx, nil, docstore.FindOptions{}); err != nil {
		return err
	}

	res, err = r.coll.DeleteMany(ctx, byCity("Paris"))
	if err != nil {
		return err
	}
	r.out.printf("Deleted %d document(s) where city is Paris.\n", res.Deleted)
	r.out.println("Documents remaining after deleting Paris residents:")
	return r.printFind(ctx, nil, docstore.FindOptions{})
}

func (r *Runner) dropCollection(ctx context.Context) error {
	if !r.drop {
		return nil
	}
	if err := r.coll.Drop(ctx); err != nil {
		return err
	}
	r.out.printf("\nCollection '%s' dropped.\n", r.coll.Name())
	return nil
}

func (r *Runner) printFind(ctx context.Context, filter interface{}, opts docstore.FindOptions) error {
	docs, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return r.out.docs(docs)
}

func (r *Runner) printFindOne(ctx context.Context, label string, filter interface{}) error {
	doc, err := r.coll.FindOne(ctx, filter)
	if err != nil {
		return err
	}
	return r.out.doc(label, doc)
}

func byName(name string) bson.D {
	return bson.D{{Key: "name", Value: name}}
}

func byCity(city string) bson.D {
	return bson.D{{Key: "city", Value: city}}
}

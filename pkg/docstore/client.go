// Package docstore wraps the MongoDB driver with a small, typed collection
// store used by the CRUD tutorial.
//
//	client, err := docstore.Connect(ctx, docstore.Options{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//	store := client.Store()
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/entrhq/pilot/pkg/logging"
)

var docLog *logging.Logger

func init() {
	var err error
	docLog, err = logging.NewLogger("docstore")
	if err != nil {
		docLog.Warnf("Failed to initialize docstore logger, using stderr fallback: %v", err)
	}
}

const (
	DefaultURI            = "mongodb://localhost:27017/"
	DefaultDatabase       = "mydatabase"
	DefaultCollection     = "mycollection"
	DefaultConnectTimeout = 5 * time.Second
)

// ErrConnectionFailure matches any error caused by the server being
// unreachable or refusing the connection check.
var ErrConnectionFailure = errors.New("connection failure")

// ConnectionError carries the driver error behind a failed connection.
// It matches ErrConnectionFailure with errors.Is and prints as the cause.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnectionFailure }

// IsConnectionFailure reports whether err means the server could not be
// reached, either at connect time or during a later operation.
func IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	var selErr topology.ServerSelectionError
	var selErrPtr *topology.ServerSelectionError
	return errors.Is(err, ErrConnectionFailure) ||
		errors.As(err, &selErr) ||
		errors.As(err, &selErrPtr) ||
		mongo.IsNetworkError(err)
}

// Options selects the server, database and collection.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.URI == "" {
		o.URI = DefaultURI
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.Collection == "" {
		o.Collection = DefaultCollection
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	return o
}

// Client owns a driver client bound to one database and collection.
type Client struct {
	client *mongo.Client
	opts   Options
}

// Open creates a client without talking to the server. The driver connects
// lazily, so an unreachable server only shows up on Ping or the first
// operation.
func Open(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)

	// mongo.Connect only validates options and starts background monitoring.
	client, err := mongo.Connect(context.Background(), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	return NewClient(client, opts), nil
}

// NewClient wraps an existing driver client.
func NewClient(client *mongo.Client, opts Options) *Client {
	return &Client{client: client, opts: opts.withDefaults()}
}

// Connect opens a client and verifies the server answers.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	c, err := Open(opts)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, err
	}
	return c, nil
}

// Ping runs the hello command against the admin database.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	err := c.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Err()
	if err != nil {
		docLog.Warnf("MongoDB hello failed for %s: %v", c.opts.URI, err)
		return pingError(err)
	}
	docLog.Infof("connected to MongoDB at %s", c.opts.URI)
	return nil
}

// pingError marks unreachable-server failures as ConnectionError. A server
// that answers with a command error (auth, unsupported command) is reachable.
func pingError(err error) error {
	if IsConnectionFailure(err) || mongo.IsTimeout(err) {
		return &ConnectionError{Err: err}
	}
	return fmt.Errorf("hello command failed: %w", err)
}

// Store returns the store for the configured collection.
func (c *Client) Store() *Store {
	return NewStore(c.client.Database(c.opts.Database).Collection(c.opts.Collection))
}

// Options returns the effective options.
func (c *Client) Options() Options {
	return c.opts
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

package tutorial

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/entrhq/pilot/pkg/docstore"
	"github.com/entrhq/pilot/pkg/logging"
)

var tutorialLog *logging.Logger

func init() {
	var err error
	tutorialLog, err = logging.NewLogger("tutorial")
	if err != nil {
		tutorialLog.Warnf("Failed to initialize tutorial logger, using stderr fallback: %v", err)
	}
}

const closeTimeout = 5 * time.Second

// Config is everything `pilot crud` needs.
type Config struct {
	Store    docstore.Options
	SeedFile string
	Reset    bool
	Drop     bool
	Color    bool
}

// Main runs the whole tutorial the way the command line presents it: it
// reports failures on out instead of leaving them to the caller, and once a
// client exists it always closes it and says so. The error is returned so
// the caller can set an exit status.
func Main(ctx context.Context, cfg Config, out io.Writer) error {
	seed, err := LoadSeed(cfg.SeedFile)
	if err != nil {
		return report(out, cfg.Store, err)
	}

	client, err := docstore.Open(cfg.Store)
	if err != nil {
		return report(out, cfg.Store, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			tutorialLog.Warnf("close: %v", err)
		}
		fmt.Fprintln(out, "\nMongoDB connection closed.")
	}()

	if err := client.Ping(ctx); err != nil {
		return report(out, cfg.Store, err)
	}
	fmt.Fprintln(out, "MongoDB connection successful!")

	runner := NewRunner(client.Store(), out,
		WithSeed(seed),
		WithReset(cfg.Reset),
		WithDrop(cfg.Drop),
		WithColor(cfg.Color),
	)
	if err := runner.Run(ctx); err != nil {
		return report(out, cfg.Store, err)
	}
	tutorialLog.Infof("tutorial finished against %s", client.Options().URI)
	return nil
}

func report(out io.Writer, opts docstore.Options, err error) error {
	tutorialLog.Errorf("tutorial failed: %v", err)
	if docstore.IsConnectionFailure(err) {
		fmt.Fprintf(out, "Could not connect to MongoDB: %v\n", err)
		fmt.Fprintf(out, "Please ensure MongoDB is running on %s.\n", serverAddress(opts.URI))
		return err
	}
	fmt.Fprintf(out, "An error occurred: %v\n", err)
	return err
}

// serverAddress returns the host list of uri for messages.
func serverAddress(uri string) string {
	if uri == "" {
		uri = docstore.DefaultURI
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || len(cs.Hosts) == 0 {
		return uri
	}
	return strings.Join(cs.Hosts, ",")
}

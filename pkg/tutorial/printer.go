package tutorial

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// printer writes documents as relaxed extended JSON, one per line.
type printer struct {
	w     io.Writer
	color bool
}

func (p *printer) println(a ...interface{}) {
	fmt.Fprintln(p.w, a...)
}

func (p *printer) printf(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *printer) docs(docs []bson.D) error {
	for _, d := range docs {
		if err := p.doc("", d); err != nil {
			return err
		}
	}
	return nil
}

// doc prints d on one line after an optional label. A nil document prints
// as null.
func (p *printer) doc(label string, d bson.D) error {
	text := "null"
	if d != nil {
		raw, err := bson.MarshalExtJSON(d, false, false)
		if err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
		text = string(raw)
	}

	if label != "" {
		fmt.Fprint(p.w, label, " ")
	}
	if !p.color {
		fmt.Fprintln(p.w, text)
		return nil
	}
	if err := quick.Highlight(p.w, text, "json", "terminal256", "monokai"); err != nil {
		return fmt.Errorf("failed to highlight document: %w", err)
	}
	fmt.Fprintln(p.w)
	return nil
}

func formatID(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

func formatIDs(ids []interface{}) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = formatID(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

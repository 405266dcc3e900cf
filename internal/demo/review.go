package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/schema"
)

// MaxRevisions is how many revisions the reviewer asks for before approving.
const MaxRevisions = 2

var reviewSchema = &schema.Descriptor{
	Fields: schema.Schema{
		"topic":     schema.String(),
		"draft":     schema.String(),
		"revisions": schema.Int(),
		"status":    schema.String(),
	},
	Reducers:  map[string]schema.Reducer{"revisions": schema.Sum, "log": schema.Append},
	Immutable: []string{"topic"},
}

type reviewView struct {
	Topic     string `json:"topic"`
	Draft     string `json:"draft"`
	Revisions int    `json:"revisions"`
}

func write(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	v, err := domain.Decode[reviewView](s)
	if err != nil {
		return nil, err
	}
	return harbor.Delta{"draft": "notes on " + v.Topic, "revisions": 0, "log": "write"}, nil
}

func critique(ctx context.Context, s harbor.State) (harbor.Route, error) {
	v, err := domain.Decode[reviewView](s)
	if err != nil {
		return harbor.Route{}, err
	}
	if v.Revisions < MaxRevisions {
		return harbor.To("revise", harbor.Delta{"log": "critique"}), nil
	}
	return harbor.To("publish", harbor.Delta{"log": "approve"}), nil
}

func revise(ctx context.Context, s harbor.State) (harbor.Route, error) {
	v, err := domain.Decode[reviewView](s)
	if err != nil {
		return harbor.Route{}, err
	}
	return harbor.To("critique", harbor.Delta{
		"draft":     fmt.Sprintf("%s (rev %d)", v.Draft, v.Revisions+1),
		"revisions": 1,
		"log":       "revise",
	}), nil
}

func publish(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	return harbor.Delta{"status": "published", "log": "publish"}, nil
}

// Review declares write -> critique <-> revise, critique -> publish.
func Review(opts ...harbor.Option) *harbor.Graph {
	g := harbor.Declare(harbor.Config{Name: "review", Start: "write", Schema: reviewSchema}, opts...)
	harbor.Node(g, write)
	harbor.Node(g, critique, harbor.WithTimeout(time.Second))
	harbor.Node(g, revise, harbor.WithRetry(2, 10*time.Millisecond, 2))
	harbor.Node(g, publish)
	return g
}

package demo

import (
	"context"
	"strings"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/pkg/schema"
)

var pipelineSchema = &schema.Descriptor{
	Fields: schema.Schema{
		"text":  schema.String(),
		"words": schema.Slice(schema.String()),
		"count": schema.Int(),
	},
	Reducers: map[string]schema.Reducer{"trace": schema.Append},
	Required: []string{"text"},
}

func trim(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	return harbor.Delta{"text": strings.TrimSpace(s["text"].(string)), "trace": "trim"}, nil
}

func lower(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	return harbor.Delta{"text": strings.ToLower(s["text"].(string)), "trace": "lower"}, nil
}

func split(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	fields := strings.Fields(s["text"].(string))
	words := make([]any, len(fields))
	for i, f := range fields {
		words[i] = f
	}
	return harbor.Delta{"words": words, "count": len(fields), "trace": "split"}, nil
}

// Pipeline declares trim -> lower -> split.
func Pipeline(opts ...harbor.Option) *harbor.Graph {
	g := harbor.Declare(harbor.Config{Name: "pipeline", Start: "trim", Schema: pipelineSchema}, opts...)
	harbor.Node(g, trim)
	harbor.Node(g, lower)
	harbor.Node(g, split)
	return g
}

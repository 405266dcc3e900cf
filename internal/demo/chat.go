package demo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/pkg/schema"
)

var chatSchema = &schema.Descriptor{
	Fields: schema.Schema{
		"question": schema.Tagged("question", "required,min=3"),
		"answer":   schema.String(),
	},
	Reducers: map[string]schema.Reducer{"findings": schema.MergeMap},
	Required: []string{"question"},
}

var product = regexp.MustCompile(`(\d+)\s*(?:times|\*|x)\s*(\d+)`)

func classify(ctx context.Context, s harbor.State) (harbor.Route, error) {
	q := s["question"].(string)
	if product.MatchString(q) {
		return harbor.ToAll("search", "calculate"), nil
	}
	return harbor.To("search"), nil
}

func search(ctx context.Context, s harbor.State) (harbor.Route, error) {
	q := strings.ToLower(s["question"].(string))
	return harbor.To("respond", harbor.Delta{
		"findings": map[string]any{"search": "no documents about " + strings.TrimSuffix(q, "?")},
	}), nil
}

func calculate(ctx context.Context, s harbor.State) (harbor.Route, error) {
	m := product.FindStringSubmatch(s["question"].(string))
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	return harbor.To("respond", harbor.Delta{
		"findings": map[string]any{"calculate": a * b},
	}), nil
}

func respond(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	findings, _ := s["findings"].(map[string]any)
	if v, ok := findings["calculate"]; ok {
		return harbor.Delta{"answer": fmt.Sprintf("the answer is %v", v)}, nil
	}
	return harbor.Delta{"answer": findings["search"]}, nil
}

// Chat declares classify, which fans out to search and calculate; both route to respond.
func Chat(opts ...harbor.Option) *harbor.Graph {
	g := harbor.Declare(harbor.Config{Name: "chat", Start: "classify", Schema: chatSchema}, opts...)
	harbor.Node(g, classify)
	harbor.Node(g, search)
	harbor.Node(g, calculate)
	harbor.Node(g, respond)
	return g
}

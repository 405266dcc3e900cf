package compiler

import (
	"context"
	"iter"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// recordingEngine captures what the assembler binds, without running anything.
type recordingEngine struct {
	builders []*recordingBuilder
}

func (e *recordingEngine) NewBuilder(schema any) (ports.GraphBuilder, error) {
	b := &recordingBuilder{schema: schema, funcs: map[string]ports.NodeFunc{}}
	e.builders = append(e.builders, b)
	return b, nil
}

type recordingBuilder struct {
	schema   any
	nodes    []string
	funcs    map[string]ports.NodeFunc
	policies map[string]domain.NodePolicy
	edges    []domain.Edge
	settings ports.CompileSettings
}

func (b *recordingBuilder) AddNode(name string, fn ports.NodeFunc, policy domain.NodePolicy) error {
	if b.policies == nil {
		b.policies = map[string]domain.NodePolicy{}
	}
	b.nodes = append(b.nodes, name)
	b.funcs[name] = fn
	b.policies[name] = policy
	return nil
}

func (b *recordingBuilder) AddEdge(from, to string) error {
	b.edges = append(b.edges, domain.Edge{From: from, To: to})
	return nil
}

func (b *recordingBuilder) Compile(opts ...ports.CompileOption) (ports.Artifact, error) {
	b.settings = ports.NewCompileSettings(opts...)
	return &recordedArtifact{sig: ports.NewSignature(b.nodes, b.edges)}, nil
}

type recordedArtifact struct {
	sig ports.Signature
}

func (a *recordedArtifact) Invoke(context.Context, domain.State, ...ports.RunOption) (domain.State, error) {
	return nil, nil
}

func (a *recordedArtifact) Stream(context.Context, domain.State, ...ports.RunOption) iter.Seq2[ports.Snapshot, error] {
	return func(func(ports.Snapshot, error) bool) {}
}

func (a *recordedArtifact) Signature() ports.Signature { return a.sig }

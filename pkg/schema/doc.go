// Package schema describes the shape of graph state and how node updates merge into it.
//
// A Schema maps state keys to types. A Descriptor wraps a Schema with the rules an
// engine applies at every superstep: per-key reducers, strictness about unknown keys,
// and the transition rules (required keys, immutable keys).
//
// Basic usage:
//
//	desc := &schema.Descriptor{
//	    Fields: schema.Schema{
//	        "query":   schema.String(),
//	        "results": schema.Slice(schema.Any()),
//	        "email":   schema.Tagged("email", "omitempty,email"),
//	    },
//	    Reducers:  map[string]schema.Reducer{"results": schema.Append},
//	    Immutable: []string{"query"},
//	}
//
//	next, err := desc.Merge(state, delta)
//	if err == nil {
//	    err = desc.ValidateTransition(state, next)
//	}
//
// Schemas can be parsed from type strings, which is how they travel through config
// files and JSON:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "retries": "int",
//	    "tags":    "[string]",
//	    "meta":    "{any}",
//	})
package schema

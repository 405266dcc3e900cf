package domain

// Reserved sentinels. Start is the implicit source of the entry edge and End is the
// value meaning "graph ends here".
const (
	Start = "__start__"
	End   = "__end__"
)

// Route is a routing directive: it names the next node(s) and optionally carries a
// state update that is merged before the targets run.
//
// Goto holds one node name, an ordered list of names (fan-out) or the terminal sentinel.
type Route struct {
	Goto   []string `json:"goto"`
	Update Delta    `json:"update,omitempty"`
}

// To builds a route to a single target. Passing several updates merges them left to right.
func To(target string, updates ...Delta) Route {
	return Route{Goto: []string{target}, Update: mergeDeltas(updates)}
}

// ToAll builds a fan-out route. The targets run in the order given.
func ToAll(targets ...string) Route {
	return Route{Goto: append([]string(nil), targets...)}
}

// Finish builds a route to the terminal sentinel.
func Finish(updates ...Delta) Route {
	return Route{Goto: []string{End}, Update: mergeDeltas(updates)}
}

// WithUpdate returns a copy of r whose update also contains more.
// Keys in more win over keys already present.
func (r Route) WithUpdate(more Delta) Route {
	merged := make(Delta, len(r.Update)+len(more))
	for k, v := range r.Update {
		merged[k] = v
	}
	for k, v := range more {
		merged[k] = v
	}
	return Route{Goto: append([]string(nil), r.Goto...), Update: merged}
}

func mergeDeltas(updates []Delta) Delta {
	if len(updates) == 0 {
		return nil
	}
	merged := make(Delta)
	for _, u := range updates {
		for k, v := range u {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

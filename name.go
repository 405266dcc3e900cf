package harbor

import (
	"reflect"
	"runtime"
	"strings"
)

// funcName returns the identifier of a named function or method value, or "" for
// function literals.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	full := strings.TrimSuffix(f.Name(), "-fm")
	full = strings.TrimSuffix(full, "[...]")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	parts := strings.Split(full, ".")
	name := parts[len(parts)-1]
	if isLiteral(name) || len(parts) > 2 && isLiteral(parts[len(parts)-2]) {
		return ""
	}
	return name
}

// isLiteral matches the compiler's names for closures: func1, func2, ...
func isLiteral(s string) bool {
	rest, ok := strings.CutPrefix(s, "func")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

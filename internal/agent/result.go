package agent

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Result-rendering limits per §9: bound how much of a sandbox value makes
// it back into the conversation, keeping prompt growth bounded regardless
// of what tool code returns.
const (
	maxInspectDepth    = 6
	maxCollectionWidth = 1000
	maxInspectChars    = 2000
)

// inspect renders value using a language-neutral, depth- and width-bounded
// pretty-printed representation, truncating with an ellipsis marker rather
// than growing the message unboundedly.
func inspect(value any) string {
	var b strings.Builder
	inspectValue(&b, reflect.ValueOf(value), 0)
	out := b.String()
	if len(out) > maxInspectChars {
		out = out[:maxInspectChars] + "...(truncated)"
	}
	return out
}

func inspectValue(b *strings.Builder, v reflect.Value, depth int) {
	if !v.IsValid() {
		b.WriteString("nil")
		return
	}
	if depth >= maxInspectDepth {
		b.WriteString("...")
		return
	}

	switch v.Kind() {
	case reflect.Interface:
		inspectValue(b, v.Elem(), depth)
	case reflect.Ptr:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		inspectValue(b, v.Elem(), depth)
	case reflect.Slice, reflect.Array:
		b.WriteByte('[')
		n := v.Len()
		limit := n
		if limit > maxCollectionWidth {
			limit = maxCollectionWidth
		}
		for i := 0; i < limit; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			inspectValue(b, v.Index(i), depth+1)
		}
		if n > limit {
			fmt.Fprintf(b, ", ...(%d more)", n-limit)
		}
		b.WriteByte(']')
	case reflect.Map:
		b.WriteByte('{')
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i].Interface()) < fmt.Sprintf("%v", keys[j].Interface())
		})
		limit := len(keys)
		if limit > maxCollectionWidth {
			limit = maxCollectionWidth
		}
		for i := 0; i < limit; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%v: ", keys[i].Interface())
			inspectValue(b, v.MapIndex(keys[i]), depth+1)
		}
		if len(keys) > limit {
			fmt.Fprintf(b, ", ...(%d more)", len(keys)-limit)
		}
		b.WriteByte('}')
	case reflect.Struct:
		t := v.Type()
		b.WriteString(t.Name())
		b.WriteByte('{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", t.Field(i).Name)
			inspectValue(b, v.Field(i), depth+1)
		}
		b.WriteByte('}')
	case reflect.String:
		fmt.Fprintf(b, "%q", v.String())
	default:
		fmt.Fprintf(b, "%v", v.Interface())
	}
}

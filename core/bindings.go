package core

import (
	"fmt"
	"sort"
	"strings"
)

// Bindings is one set of statement parameters, either Named or Positional.
type Bindings interface {
	Len() int
	Dump() string
}

// Named binds :name placeholders.
type Named map[string]any

// Positional binds ? placeholders in order.
type Positional []any

func (named Named) Len() int { return len(named) }

func (positional Positional) Len() int { return len(positional) }

// Dump renders the parameters for failure logs.
func (named Named) Dump() string {
	keys := make([]string, 0, len(named))
	for key := range named {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("Key: Name: [%d] :%s %s", len(key)+1, key, dumpValue(named[key]))
	}
	return fmt.Sprintf("Params: %d\n%s", len(named), strings.Join(parts, "\n"))
}

func (positional Positional) Dump() string {
	parts := make([]string, len(positional))
	for i, value := range positional {
		parts[i] = fmt.Sprintf("Key: Position #%d: %s", i, dumpValue(value))
	}
	return fmt.Sprintf("Params: %d\n%s", len(positional), strings.Join(parts, "\n"))
}

func dumpValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "type=null"
	case string:
		return fmt.Sprintf("type=string value=%q", v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("type=int value=%d", v)
	default:
		return fmt.Sprintf("type=%T value=%v", v, v)
	}
}

// DumpBindings is Dump with a nil guard.
func DumpBindings(bindings Bindings) string {
	if bindings == nil {
		return "Params: 0"
	}
	return bindings.Dump()
}

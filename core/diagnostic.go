package core

import "fmt"

const (
	SQLStateOK      = "00000"
	SQLStateGeneral = "HY000"
)

// Diagnostic is one diagnostic tuple captured after an execution.
type Diagnostic struct {
	SQLState string `json:"sqlstate"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// OK returns the diagnostic of a successful operation.
func OK() Diagnostic {
	return Diagnostic{SQLState: SQLStateOK}
}

func (diagnostic Diagnostic) Failed() bool {
	return diagnostic.SQLState != "" && diagnostic.SQLState != SQLStateOK
}

func (diagnostic Diagnostic) String() string {
	if diagnostic.SQLState == "" {
		return "[]"
	}
	return fmt.Sprintf("[%s, %s, %s]", diagnostic.SQLState, diagnostic.Code, diagnostic.Message)
}

// ErrorSnapshot pairs the last statement-level and connection-level
// diagnostics. Values stay stale until the next execution overwrites them.
type ErrorSnapshot struct {
	Statement  Diagnostic `json:"statement"`
	Connection Diagnostic `json:"connection"`
}

package sql

import "fmt"

// Kind is the operation a statement performs.
type Kind int

const (
	SelectKind Kind = iota
	InsertKind
	UpdateKind
	DeleteKind
	DDLKind
	BeginKind
	CommitKind
	RollbackKind
	UseKind
	UnknownKind
)

func (kind Kind) String() string {
	switch kind {
	case SelectKind:
		return "select"
	case InsertKind:
		return "insert"
	case UpdateKind:
		return "update"
	case DeleteKind:
		return "delete"
	case DDLKind:
		return "ddl"
	case BeginKind:
		return "begin"
	case CommitKind:
		return "commit"
	case RollbackKind:
		return "rollback"
	case UseKind:
		return "use"
	case UnknownKind:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// Classify reports the kind of a raw statement from its leading keyword.
// It does not validate the rest of the statement.
func Classify(sql string) Kind {
	token := NewLexer(sql).NextToken()
	switch token.Type {
	case Select:
		return SelectKind
	case Insert:
		return InsertKind
	case Update:
		return UpdateKind
	case Delete:
		return DeleteKind
	case Drop, Alter, Truncate, Create:
		return DDLKind
	case Begin:
		return BeginKind
	case Commit:
		return CommitKind
	case Rollback:
		return RollbackKind
	case Use:
		return UseKind
	default:
		return UnknownKind
	}
}

package sql

import (
	"errors"
	"fmt"
)

// ErrStatementRejected is returned when raw SQL does not match the shape
// accepted for its operation.
var ErrStatementRejected = errors.New("statement rejected")

// Validate checks that sql has the statement shape accepted for kind:
//
//	update  UPDATE <ident> SET <assignments> WHERE <cond>
//	select  SELECT <cols> FROM <ident> ...
//	insert  INSERT INTO <ident> (<cols>) VALUES (<vals>) | INSERT INTO <ident> SET <assignments>
//	delete  DELETE FROM <ident> WHERE <cond>
//	ddl     DROP ... | ALTER TABLE ... | TRUNCATE ... | CREATE TABLE ...
//
// Keywords match case-insensitively. A single trailing semicolon is
// accepted; stacked statements are not. Only the shape is checked.
func Validate(kind Kind, sql string) error {
	v := newValidator(sql)
	if err := v.checkSingleStatement(); err != nil {
		return err
	}

	switch kind {
	case UpdateKind:
		return v.update()
	case SelectKind:
		return v.selectStatement()
	case InsertKind:
		return v.insert()
	case DeleteKind:
		return v.delete()
	case DDLKind:
		return v.ddl()
	default:
		return fmt.Errorf("%w: no shape for %s statements", ErrStatementRejected, kind)
	}
}

type validator struct {
	tokens []Token
	pos    int
}

func newValidator(sql string) *validator {
	tokens := tokenize(sql)
	// drop one trailing semicolon
	if n := len(tokens); n >= 2 && tokens[n-2].Type == Semicolon {
		tokens = append(tokens[:n-2], tokens[n-1])
	}
	return &validator{tokens: tokens}
}

func (v *validator) checkSingleStatement() error {
	for _, token := range v.tokens {
		if token.Type == Semicolon {
			return v.reject("a single statement", token)
		}
	}
	return nil
}

func (v *validator) peek() Token {
	return v.tokens[v.pos]
}

func (v *validator) next() Token {
	token := v.tokens[v.pos]
	if token.Type != EOF {
		v.pos++
	}
	return token
}

func (v *validator) reject(expected string, got Token) error {
	if got.Type == EOF {
		return fmt.Errorf("%w: expected %s, got end of statement", ErrStatementRejected, expected)
	}
	return fmt.Errorf("%w: expected %s at position %d, got %s", ErrStatementRejected, expected, got.Pos, got)
}

func (v *validator) expect(tokenType TokenType, expected string) error {
	token := v.next()
	if token.Type != tokenType {
		return v.reject(expected, token)
	}
	return nil
}

func (v *validator) identifier(expected string) error {
	token := v.next()
	if token.Type != Identifier && token.Type != QuotedIdentifier {
		return v.reject(expected, token)
	}
	return nil
}

// until consumes tokens up to (not including) stop, requiring at least one.
func (v *validator) until(stop TokenType, expected string) error {
	count := 0
	for v.peek().Type != stop && v.peek().Type != EOF {
		v.next()
		count++
	}
	if count == 0 {
		return v.reject(expected, v.peek())
	}
	return nil
}

// rest consumes every remaining token, requiring at least one.
func (v *validator) rest(expected string) error {
	return v.until(EOF, expected)
}

// group consumes a parenthesised, non-empty token run.
func (v *validator) group(expected string) error {
	if err := v.expect(ParenOpen, "'(' before "+expected); err != nil {
		return err
	}
	depth, count := 1, 0
	for {
		token := v.next()
		switch token.Type {
		case EOF:
			return v.reject("')' after "+expected, token)
		case ParenOpen:
			depth++
		case ParenClose:
			depth--
			if depth == 0 {
				if count == 0 {
					return v.reject(expected, token)
				}
				return nil
			}
		}
		count++
	}
}

func (v *validator) end() error {
	if token := v.peek(); token.Type != EOF {
		return v.reject("end of statement", token)
	}
	return nil
}

func (v *validator) update() error {
	if err := v.expect(Update, "UPDATE"); err != nil {
		return err
	}
	if err := v.identifier("table name after UPDATE"); err != nil {
		return err
	}
	if err := v.expect(Set, "SET after table name"); err != nil {
		return err
	}
	if err := v.until(Where, "assignments after SET"); err != nil {
		return err
	}
	if err := v.expect(Where, "WHERE"); err != nil {
		return err
	}
	return v.rest("condition after WHERE")
}

func (v *validator) selectStatement() error {
	if err := v.expect(Select, "SELECT"); err != nil {
		return err
	}
	if err := v.until(From, "columns after SELECT"); err != nil {
		return err
	}
	if err := v.expect(From, "FROM"); err != nil {
		return err
	}
	return v.identifier("table name after FROM")
}

func (v *validator) insert() error {
	if err := v.expect(Insert, "INSERT"); err != nil {
		return err
	}
	if err := v.expect(Into, "INTO after INSERT"); err != nil {
		return err
	}
	if err := v.identifier("table name after INSERT INTO"); err != nil {
		return err
	}

	switch v.peek().Type {
	case Set:
		v.next()
		return v.rest("assignments after SET")
	case ParenOpen:
		if err := v.group("column list"); err != nil {
			return err
		}
		if err := v.expect(Values, "VALUES after column list"); err != nil {
			return err
		}
		for {
			if err := v.group("values"); err != nil {
				return err
			}
			if v.peek().Type != Comma {
				break
			}
			v.next()
		}
		return v.end()
	default:
		return v.reject("'(' or SET after table name", v.peek())
	}
}

func (v *validator) delete() error {
	if err := v.expect(Delete, "DELETE"); err != nil {
		return err
	}
	if err := v.expect(From, "FROM after DELETE"); err != nil {
		return err
	}
	if err := v.identifier("table name after DELETE FROM"); err != nil {
		return err
	}
	if err := v.expect(Where, "WHERE after table name"); err != nil {
		return err
	}
	return v.rest("condition after WHERE")
}

func (v *validator) ddl() error {
	token := v.next()
	switch token.Type {
	case Drop, Truncate:
		return v.rest("target after " + toUpper(token.Value))
	case Alter, Create:
		if err := v.expect(TableKeyword, "TABLE after "+toUpper(token.Value)); err != nil {
			return err
		}
		return v.rest("table definition")
	default:
		return v.reject("DROP, ALTER TABLE, TRUNCATE or CREATE TABLE", token)
	}
}

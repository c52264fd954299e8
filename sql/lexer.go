package sql

type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

type TokenType int

const (
	Identifier TokenType = iota
	QuotedIdentifier
	Placeholder
	Wildcard
	String
	Int
	Float
	Comma
	Semicolon
	ParenOpen
	ParenClose
	Equals
	Operator
	Symbol
	Select
	From
	Where
	Insert
	Into
	Values
	Set
	Update
	Delete
	Create
	Drop
	Alter
	Truncate
	TableKeyword
	Begin
	Commit
	Rollback
	Use
	Join
	Inner
	On
	And
	Or
	Not
	Null
	Between
	Order
	Group
	By
	Asc
	Desc
	Limit
	EOF
	Unknown
)

var tokenNames = map[TokenType]string{
	Identifier:       "Identifier",
	QuotedIdentifier: "QuotedIdentifier",
	Placeholder:      "Placeholder",
	Wildcard:         "Wildcard",
	String:           "String",
	Int:              "Int",
	Float:            "Float",
	Comma:            "Comma",
	Semicolon:        "Semicolon",
	ParenOpen:        "ParenOpen",
	ParenClose:       "ParenClose",
	Equals:           "Equals",
	Operator:         "Operator",
	Symbol:           "Symbol",
	Select:           "Select",
	From:             "From",
	Where:            "Where",
	Insert:           "Insert",
	Into:             "Into",
	Values:           "Values",
	Set:              "Set",
	Update:           "Update",
	Delete:           "Delete",
	Create:           "Create",
	Drop:             "Drop",
	Alter:            "Alter",
	Truncate:         "Truncate",
	TableKeyword:     "Table",
	Begin:            "Begin",
	Commit:           "Commit",
	Rollback:         "Rollback",
	Use:              "Use",
	Join:             "Join",
	Inner:            "Inner",
	On:               "On",
	And:              "And",
	Or:               "Or",
	Not:              "Not",
	Null:             "Null",
	Between:          "Between",
	Order:            "Order",
	Group:            "Group",
	By:               "By",
	Asc:              "Asc",
	Desc:             "Desc",
	Limit:            "Limit",
	EOF:              "EOF",
}

func (tokenType TokenType) String() string {
	if name, ok := tokenNames[tokenType]; ok {
		return name
	}
	return "Unknown"
}

func (token Token) String() string {
	switch token.Type {
	case Identifier, QuotedIdentifier, Placeholder, String, Int, Float, Operator, Symbol, Unknown:
		return token.Type.String() + "(" + token.Value + ")"
	default:
		return token.Type.String()
	}
}

// IsKeyword reports whether the token is a reserved word rather than a name or literal.
func (token Token) IsKeyword() bool {
	return token.Type >= Select && token.Type < EOF
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) NextToken() Token {
	var token Token

	lexer.skipWhitespace()
	start := lexer.position

	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: ","}
	case ';':
		token = Token{Type: Semicolon, Value: ";"}
	case '(':
		token = Token{Type: ParenOpen, Value: "("}
	case ')':
		token = Token{Type: ParenClose, Value: ")"}
	case '*':
		token = Token{Type: Wildcard, Value: "*"}
	case 0:
		return Token{Type: EOF, Value: "", Pos: len(lexer.sql)}
	case '\'':
		token = Token{Type: String, Value: lexer.readQuoted('\'')}
	case '`', '"':
		token = Token{Type: QuotedIdentifier, Value: lexer.readQuoted(lexer.ch)}
	case '?':
		token = Token{Type: Placeholder, Value: "?"}
	case ':':
		if isIdentStart(lexer.peekChar()) {
			lexer.readChar() // consume ':'
			name := lexer.readIdentifier()
			return Token{Type: Placeholder, Value: ":" + name, Pos: start}
		}
		return Token{Type: Symbol, Value: lexer.readWhile(func(ch byte) bool { return ch == ':' }), Pos: start}
	case '$':
		if isDigit(lexer.peekChar()) {
			lexer.readChar() // consume '$'
			return Token{Type: Placeholder, Value: "$" + lexer.readNumber(), Pos: start}
		}
		token = Token{Type: Symbol, Value: "$"}
	default:
		if isOperator(lexer.ch) {
			operator := lexer.readOperator()
			if operator == "=" {
				return Token{Type: Equals, Value: operator, Pos: start}
			}
			return Token{Type: Operator, Value: operator, Pos: start}
		} else if isDigit(lexer.ch) {
			num := lexer.readNumber()
			if lexer.ch == '.' && isDigit(lexer.peekChar()) {
				lexer.readChar() // consume '.'
				decimal := lexer.readNumber()
				return Token{Type: Float, Value: num + "." + decimal, Pos: start}
			}
			return Token{Type: Int, Value: num, Pos: start}
		} else if isIdentStart(lexer.ch) {
			literal := lexer.readIdentifier()
			return Token{Type: lookupIdentifier(literal), Value: literal, Pos: start}
		}
		token = Token{Type: Symbol, Value: string(lexer.ch)}
	}

	token.Pos = start
	lexer.readChar()
	return token
}

func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

func (lexer *Lexer) skipWhitespace() {
	for {
		switch {
		case lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r':
			lexer.readChar()
		case lexer.ch == '-' && lexer.peekChar() == '-':
			for lexer.ch != '\n' && lexer.ch != 0 {
				lexer.readChar()
			}
		case lexer.ch == '/' && lexer.peekChar() == '*':
			lexer.readChar()
			lexer.readChar()
			for lexer.ch != 0 && !(lexer.ch == '*' && lexer.peekChar() == '/') {
				lexer.readChar()
			}
			if lexer.ch != 0 {
				lexer.readChar()
				lexer.readChar()
			}
		default:
			return
		}
	}
}

func (lexer *Lexer) readIdentifier() string {
	return lexer.readWhile(isAlphaNumeric)
}

func (lexer *Lexer) readNumber() string {
	return lexer.readWhile(isDigit)
}

func (lexer *Lexer) readOperator() string {
	return lexer.readWhile(isOperator)
}

func (lexer *Lexer) readWhile(accept func(byte) bool) string {
	position := lexer.position
	for lexer.ch != 0 && accept(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readQuoted reads a quoted run. A doubled quote or a backslash escapes the
// quote character. The lexer is left on the closing quote.
func (lexer *Lexer) readQuoted(quote byte) string {
	lexer.readChar() // skip opening quote
	var out []byte
	for lexer.ch != 0 {
		if lexer.ch == '\\' && quote == '\'' && lexer.peekChar() != 0 {
			lexer.readChar()
			out = append(out, lexer.ch)
			lexer.readChar()
			continue
		}
		if lexer.ch == quote {
			if lexer.peekChar() == quote {
				out = append(out, quote)
				lexer.readChar()
				lexer.readChar()
				continue
			}
			break
		}
		out = append(out, lexer.ch)
		lexer.readChar()
	}
	return string(out)
}

func isIdentStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isAlphaNumeric(ch byte) bool {
	return isIdentStart(ch) || ch == '.' || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func lookupIdentifier(id string) TokenType {
	switch toUpper(id) {
	case "SELECT":
		return Select
	case "FROM":
		return From
	case "WHERE":
		return Where
	case "INSERT":
		return Insert
	case "INTO":
		return Into
	case "VALUES":
		return Values
	case "SET":
		return Set
	case "UPDATE":
		return Update
	case "DELETE":
		return Delete
	case "CREATE":
		return Create
	case "DROP":
		return Drop
	case "ALTER":
		return Alter
	case "TRUNCATE":
		return Truncate
	case "TABLE":
		return TableKeyword
	case "BEGIN", "START":
		return Begin
	case "COMMIT":
		return Commit
	case "ROLLBACK":
		return Rollback
	case "USE":
		return Use
	case "JOIN":
		return Join
	case "INNER":
		return Inner
	case "ON":
		return On
	case "AND":
		return And
	case "OR":
		return Or
	case "NOT":
		return Not
	case "NULL":
		return Null
	case "BETWEEN":
		return Between
	case "ORDER":
		return Order
	case "GROUP":
		return Group
	case "BY":
		return By
	case "ASC":
		return Asc
	case "DESC":
		return Desc
	case "LIMIT":
		return Limit
	default:
		return Identifier
	}
}

// toUpper converts a string to uppercase without allocating for ASCII strings
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}

func tokenize(sql string) []Token {
	lexer := NewLexer(sql)

	var tokens []Token

	for {
		token := lexer.NextToken()
		if token.Type == EOF {
			return append(tokens, token)
		}
		tokens = append(tokens, token)
	}
}

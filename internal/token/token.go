package token

// Type identifies the category of a token.
type Type string

// Token carries the lexical item along with the line it started on.
// For Error tokens, Lexeme holds the diagnostic message instead of source text.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
}

const (
	Error Type = "ERROR"
	EOF   Type = "EOF"

	// single-character tokens
	LeftParen  Type = "LEFT_PAREN"
	RightParen Type = "RIGHT_PAREN"
	LeftBrace  Type = "LEFT_BRACE"
	RightBrace Type = "RIGHT_BRACE"
	Comma      Type = "COMMA"
	Dot        Type = "DOT"
	Minus      Type = "MINUS"
	Plus       Type = "PLUS"
	Semicolon  Type = "SEMICOLON"
	Slash      Type = "SLASH"
	Star       Type = "STAR"

	// one or two character tokens
	Bang         Type = "BANG"          // !
	BangEqual    Type = "BANG_EQUAL"    // !=
	Equal        Type = "EQUAL"         // =
	EqualEqual   Type = "EQUAL_EQUAL"   // ==
	Greater      Type = "GREATER"       // >
	GreaterEqual Type = "GREATER_EQUAL" // >=
	Less         Type = "LESS"          // <
	LessEqual    Type = "LESS_EQUAL"    // <=

	// literals
	Identifier Type = "IDENTIFIER"
	String     Type = "STRING"
	Number     Type = "NUMBER"

	// keywords
	And    Type = "AND"
	Class  Type = "CLASS"
	Else   Type = "ELSE"
	False  Type = "FALSE"
	For    Type = "FOR"
	Fun    Type = "FUN"
	If     Type = "IF"
	Nil    Type = "NIL"
	Or     Type = "OR"
	Print  Type = "PRINT"
	Return Type = "RETURN"
	Super  Type = "SUPER"
	This   Type = "THIS"
	True   Type = "TRUE"
	Var    Type = "VAR"
	While  Type = "WHILE"
)

// LookupIdent returns the keyword token type or Identifier.
// Candidates are narrowed by first byte, then matched on the exact suffix.
func LookupIdent(ident string) Type {
	if len(ident) < 2 {
		return Identifier
	}
	rest := ident[1:]
	switch ident[0] {
	case 'a':
		return checkKeyword(rest, "nd", And)
	case 'c':
		return checkKeyword(rest, "lass", Class)
	case 'e':
		return checkKeyword(rest, "lse", Else)
	case 'f':
		switch rest[0] {
		case 'a':
			return checkKeyword(rest[1:], "lse", False)
		case 'o':
			return checkKeyword(rest[1:], "r", For)
		case 'u':
			return checkKeyword(rest[1:], "n", Fun)
		}
	case 'i':
		return checkKeyword(rest, "f", If)
	case 'n':
		return checkKeyword(rest, "il", Nil)
	case 'o':
		return checkKeyword(rest, "r", Or)
	case 'p':
		return checkKeyword(rest, "rint", Print)
	case 'r':
		return checkKeyword(rest, "eturn", Return)
	case 's':
		return checkKeyword(rest, "uper", Super)
	case 't':
		switch rest[0] {
		case 'h':
			return checkKeyword(rest[1:], "is", This)
		case 'r':
			return checkKeyword(rest[1:], "ue", True)
		}
	case 'v':
		return checkKeyword(rest, "ar", Var)
	case 'w':
		return checkKeyword(rest, "hile", While)
	}
	return Identifier
}

func checkKeyword(rest, want string, t Type) Type {
	if rest == want {
		return t
	}
	return Identifier
}

// StartsStatement reports whether t begins a declaration or statement.
// The compiler resynchronizes on these after a syntax error.
func StartsStatement(t Type) bool {
	switch t {
	case Class, Fun, Var, For, If, While, Print, Return:
		return true
	default:
		return false
	}
}

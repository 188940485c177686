package tape

// TokenType represents the type of a token in a .tape file
type TokenType string

const (
	// Special tokens
	TOKEN_EOF     TokenType = "EOF"
	TOKEN_ILLEGAL TokenType = "ILLEGAL"
	TOKEN_NEWLINE TokenType = "NEWLINE"

	// Literals
	TOKEN_STRING     TokenType = "STRING"
	TOKEN_NUMBER     TokenType = "NUMBER"
	TOKEN_DURATION   TokenType = "DURATION"
	TOKEN_IDENTIFIER TokenType = "IDENTIFIER"

	// Commands - Output
	TOKEN_OUTPUT TokenType = "Output"
	TOKEN_GAPS   TokenType = "Gaps"

	// Commands - Windows
	TOKEN_MAP   TokenType = "Map"
	TOKEN_UNMAP TokenType = "Unmap"
	TOKEN_FLOAT TokenType = "Float"
	TOKEN_TILE  TokenType = "Tile"
	TOKEN_FOCUS TokenType = "Focus"

	// Commands - Layout
	TOKEN_SPLIT  TokenType = "Split"
	TOKEN_RESIZE TokenType = "Resize"

	// Commands - Workspace
	TOKEN_WORKSPACE  TokenType = "Workspace"
	TOKEN_MOVE_TO_WS TokenType = "MoveToWorkspace"

	// Commands - Input and timing
	TOKEN_KEY   TokenType = "Key"
	TOKEN_SLEEP TokenType = "Sleep"

	// Commands - Assertions
	TOKEN_EXPECT TokenType = "Expect"

	// Keywords
	TOKEN_VERTICAL   TokenType = "Vertical"
	TOKEN_HORIZONTAL TokenType = "Horizontal"
	TOKEN_FLOATING   TokenType = "floating"
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// IsCommand returns true if the token type starts a command
func (tt TokenType) IsCommand() bool {
	switch tt {
	case TOKEN_OUTPUT, TOKEN_GAPS,
		TOKEN_MAP, TOKEN_UNMAP, TOKEN_FLOAT, TOKEN_TILE, TOKEN_FOCUS,
		TOKEN_SPLIT, TOKEN_RESIZE,
		TOKEN_WORKSPACE, TOKEN_MOVE_TO_WS,
		TOKEN_KEY, TOKEN_SLEEP,
		TOKEN_EXPECT:
		return true
	}
	return false
}

// IsOrientation returns true if the token names a split orientation
func (tt TokenType) IsOrientation() bool {
	return tt == TOKEN_VERTICAL || tt == TOKEN_HORIZONTAL
}

// KeywordTokenMap maps string keywords to token types
var KeywordTokenMap = map[string]TokenType{
	// Output
	"Output": TOKEN_OUTPUT,
	"Gaps":   TOKEN_GAPS,

	// Windows
	"Map":   TOKEN_MAP,
	"Unmap": TOKEN_UNMAP,
	"Float": TOKEN_FLOAT,
	"Tile":  TOKEN_TILE,
	"Focus": TOKEN_FOCUS,

	// Layout
	"Split":  TOKEN_SPLIT,
	"Resize": TOKEN_RESIZE,

	// Workspace
	"Workspace":       TOKEN_WORKSPACE,
	"MoveToWorkspace": TOKEN_MOVE_TO_WS,

	// Input and timing
	"Key":   TOKEN_KEY,
	"Sleep": TOKEN_SLEEP,

	// Assertions
	"Expect": TOKEN_EXPECT,

	// Keywords
	"Vertical":   TOKEN_VERTICAL,
	"Horizontal": TOKEN_HORIZONTAL,
	"floating":   TOKEN_FLOATING,
}

// LookupKeyword returns the token type for a keyword, or TOKEN_IDENTIFIER
func LookupKeyword(word string) TokenType {
	if tok, ok := KeywordTokenMap[word]; ok {
		return tok
	}
	return TOKEN_IDENTIFIER
}

package tape

import (
	"fmt"
	"strings"
)

// ParseError is a syntax error at a position in the script
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser parses .tape files into commands
type Parser struct {
	lexer  *Lexer
	curTok Token
	errors []ParseError
}

// NewParser creates a new parser from a lexer
func NewParser(l *Lexer) *Parser {
	p := &Parser{lexer: l}
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.curTok = p.lexer.NextToken()
}

// Parse parses the entire tape file and returns all valid commands. Lines
// with errors are skipped and reported by Errors.
func (p *Parser) Parse() []Command {
	var commands []Command

	for p.curTok.Type != TOKEN_EOF {
		// Skip blank lines
		if p.curTok.Type == TOKEN_NEWLINE {
			p.nextToken()
			continue
		}

		cmd, ok := p.parseCommand()
		if ok {
			commands = append(commands, cmd)
		}
		p.skipToNextLine()
	}

	return commands
}

// parseCommand parses a single command line
func (p *Parser) parseCommand() (Command, bool) {
	cmd := Command{
		Line:   p.curTok.Line,
		Column: p.curTok.Column,
	}

	tt := p.curTok.Type
	if !tt.IsCommand() {
		p.addError(fmt.Sprintf("unexpected token %s %q", tt, p.curTok.Literal))
		return cmd, false
	}
	cmd.Type = CommandType(tt)
	p.nextToken() // consume command name

	var ok bool
	switch tt {
	case TOKEN_OUTPUT:
		ok = p.expectInt(&cmd, "width") && p.expectInt(&cmd, "height")
	case TOKEN_GAPS:
		ok = p.expectInt(&cmd, "outer gap") && p.expectInt(&cmd, "inner gap")
	case TOKEN_MAP:
		ok = p.expectName(&cmd)
		if ok && p.curTok.Type == TOKEN_FLOATING {
			cmd.Args = append(cmd.Args, p.curTok.Literal)
			p.nextToken()
		}
	case TOKEN_UNMAP, TOKEN_FLOAT, TOKEN_FOCUS:
		ok = p.expectName(&cmd)
	case TOKEN_TILE:
		ok = p.expectName(&cmd)
		if ok && p.curTok.Type == TOKEN_NUMBER {
			ok = p.expectInt(&cmd, "x") && p.expectInt(&cmd, "y")
		}
	case TOKEN_SPLIT:
		ok = p.expectInt(&cmd, "x") && p.expectInt(&cmd, "y") &&
			p.expectOrientation(&cmd) && p.expectRatio(&cmd)
	case TOKEN_RESIZE:
		ok = p.expectInt(&cmd, "x") && p.expectInt(&cmd, "y") && p.expectRatio(&cmd)
	case TOKEN_WORKSPACE:
		ok = p.expectInt(&cmd, "workspace number")
	case TOKEN_MOVE_TO_WS:
		ok = p.expectName(&cmd) && p.expectInt(&cmd, "workspace number")
	case TOKEN_KEY:
		ok = p.expectString(&cmd, "key combo")
	case TOKEN_SLEEP:
		ok = p.parseSleep(&cmd)
	case TOKEN_EXPECT:
		ok = p.expectName(&cmd) &&
			p.expectInt(&cmd, "x") && p.expectInt(&cmd, "y") &&
			p.expectInt(&cmd, "width") && p.expectInt(&cmd, "height")
	}
	if !ok {
		return cmd, false
	}

	return cmd, p.expectEndOfLine()
}

// parseSleep parses Sleep <duration>
func (p *Parser) parseSleep(cmd *Command) bool {
	if p.curTok.Type != TOKEN_DURATION {
		p.addError(fmt.Sprintf("Sleep expects a duration, got %s", p.describe()))
		return false
	}
	d, err := ParseDuration(p.curTok.Literal)
	if err != nil || d < 0 {
		p.addError(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
		return false
	}
	cmd.Args = append(cmd.Args, p.curTok.Literal)
	cmd.Delay = d
	p.nextToken()
	return true
}

func (p *Parser) expectName(cmd *Command) bool {
	return p.expectString(cmd, "window name")
}

func (p *Parser) expectString(cmd *Command, what string) bool {
	if p.curTok.Type != TOKEN_STRING {
		p.addError(fmt.Sprintf("%s expects a quoted %s, got %s", cmd.Type, what, p.describe()))
		return false
	}
	if p.curTok.Literal == "" {
		p.addError(fmt.Sprintf("%s: empty %s", cmd.Type, what))
		return false
	}
	cmd.Args = append(cmd.Args, p.curTok.Literal)
	p.nextToken()
	return true
}

func (p *Parser) expectInt(cmd *Command, what string) bool {
	if p.curTok.Type != TOKEN_NUMBER || strings.Contains(p.curTok.Literal, ".") {
		p.addError(fmt.Sprintf("%s expects an integer %s, got %s", cmd.Type, what, p.describe()))
		return false
	}
	cmd.Args = append(cmd.Args, p.curTok.Literal)
	p.nextToken()
	return true
}

func (p *Parser) expectRatio(cmd *Command) bool {
	if p.curTok.Type != TOKEN_NUMBER {
		p.addError(fmt.Sprintf("%s expects a ratio, got %s", cmd.Type, p.describe()))
		return false
	}
	cmd.Args = append(cmd.Args, p.curTok.Literal)
	p.nextToken()
	return true
}

func (p *Parser) expectOrientation(cmd *Command) bool {
	if !p.curTok.Type.IsOrientation() {
		p.addError(fmt.Sprintf("%s expects Vertical or Horizontal, got %s", cmd.Type, p.describe()))
		return false
	}
	cmd.Args = append(cmd.Args, p.curTok.Literal)
	p.nextToken()
	return true
}

func (p *Parser) expectEndOfLine() bool {
	if p.curTok.Type == TOKEN_NEWLINE || p.curTok.Type == TOKEN_EOF {
		return true
	}
	p.addError(fmt.Sprintf("unexpected %s after command", p.describe()))
	return false
}

// describe names the current token for error messages
func (p *Parser) describe() string {
	switch p.curTok.Type {
	case TOKEN_EOF:
		return "end of file"
	case TOKEN_NEWLINE:
		return "end of line"
	case TOKEN_ILLEGAL:
		return fmt.Sprintf("illegal input %q", p.curTok.Literal)
	}
	return fmt.Sprintf("%s %q", p.curTok.Type, p.curTok.Literal)
}

// skipToNextLine skips tokens until the next newline
func (p *Parser) skipToNextLine() {
	for p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.nextToken()
	}
}

// addError records an error at the current token
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, ParseError{Line: p.curTok.Line, Column: p.curTok.Column, Message: msg})
}

// Errors returns the list of parser errors
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// ParseFile parses a tape script from a string
func ParseFile(content string) ([]Command, []ParseError) {
	l := New(content)
	p := NewParser(l)
	commands := p.Parse()
	return commands, p.Errors()
}

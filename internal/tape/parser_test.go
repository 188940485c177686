package tape

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommands(t *testing.T) {
	input := `# layout session
Output 1000 800
Gaps 10 5
Map "A"
Map "dialog" floating
Tile "dialog" 100 100
Tile "A"
Split 10 10 Horizontal 0.25
Resize 10 10 0.4
Workspace 2
MoveToWorkspace "A" 3
Key "super+v"
Sleep 20ms
Expect "A" 0 0 500 800
`

	commands, errs := ParseFile(input)
	if len(errs) != 0 {
		t.Fatalf("Unexpected parse errors: %v", errs)
	}

	want := []Command{
		{Type: CommandType_Output, Args: []string{"1000", "800"}, Line: 2, Column: 1},
		{Type: CommandType_Gaps, Args: []string{"10", "5"}, Line: 3, Column: 1},
		{Type: CommandType_Map, Args: []string{"A"}, Line: 4, Column: 1},
		{Type: CommandType_Map, Args: []string{"dialog", "floating"}, Line: 5, Column: 1},
		{Type: CommandType_Tile, Args: []string{"dialog", "100", "100"}, Line: 6, Column: 1},
		{Type: CommandType_Tile, Args: []string{"A"}, Line: 7, Column: 1},
		{Type: CommandType_Split, Args: []string{"10", "10", "Horizontal", "0.25"}, Line: 8, Column: 1},
		{Type: CommandType_Resize, Args: []string{"10", "10", "0.4"}, Line: 9, Column: 1},
		{Type: CommandType_Workspace, Args: []string{"2"}, Line: 10, Column: 1},
		{Type: CommandType_MoveToWS, Args: []string{"A", "3"}, Line: 11, Column: 1},
		{Type: CommandType_Key, Args: []string{"super+v"}, Line: 12, Column: 1},
		{Type: CommandType_Sleep, Args: []string{"20ms"}, Delay: 20 * time.Millisecond, Line: 13, Column: 1},
		{Type: CommandType_Expect, Args: []string{"A", "0", "0", "500", "800"}, Line: 14, Column: 1},
	}
	if diff := cmp.Diff(want, commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
		msg    string
	}{
		{"unknown command", "Frobnicate 1", 1, 1, "unexpected token"},
		{"missing name", "Map", 1, 4, "quoted window name"},
		{"unquoted name", "Map term", 1, 5, "quoted window name"},
		{"empty name", `Map ""`, 1, 5, "empty window name"},
		{"decimal coordinate", "Split 1.5 2 Vertical 0.5", 1, 7, "integer x"},
		{"bad orientation", "Split 1 2 Diagonal 0.5", 1, 11, "Vertical or Horizontal"},
		{"missing ratio", "Resize 1 2", 1, 11, "ratio"},
		{"sleep without unit", "Sleep 5", 1, 7, "duration"},
		{"bad duration unit", "Sleep 5parsecs", 1, 7, "invalid duration"},
		{"trailing tokens", `Unmap "a" "b"`, 1, 11, "after command"},
		{"second line", "Map \"a\"\nExpect \"a\" 0 0 10", 2, 18, "integer height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseFile(tt.input)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
			}
			e := errs[0]
			if e.Line != tt.line || e.Column != tt.column {
				t.Errorf("Expected error at %d:%d, got %d:%d (%s)", tt.line, tt.column, e.Line, e.Column, e.Message)
			}
			if !strings.Contains(e.Message, tt.msg) {
				t.Errorf("Expected message containing %q, got %q", tt.msg, e.Message)
			}
		})
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	commands, errs := ParseFile("Map\nMap \"b\"\nBogus\nUnmap \"b\"\n")

	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	if len(commands) != 2 {
		t.Fatalf("Expected the 2 valid commands to survive, got %d", len(commands))
	}
	if commands[0].Line != 2 || commands[1].Line != 4 {
		t.Errorf("Expected commands from lines 2 and 4, got %d and %d", commands[0].Line, commands[1].Line)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	input := `Output 1000 800
Map "A"
Map "dialog" floating
Split 10 10 Vertical 0.5
Key "super+shift+1"
Sleep 1ms
Expect "A" 0 0 500 800
`
	commands, errs := ParseFile(input)
	if len(errs) != 0 {
		t.Fatalf("Unexpected parse errors: %v", errs)
	}

	if got := Format(commands); got != input {
		t.Errorf("Format mismatch:\nwant:\n%s\ngot:\n%s", input, got)
	}
}

func TestPlayer(t *testing.T) {
	commands, _ := ParseFile("Map \"a\"\nMap \"b\"\nUnmap \"a\"\nUnmap \"b\"\n")
	p := NewPlayer(commands)

	if p.TotalCommands() != 4 {
		t.Fatalf("Expected 4 commands, got %d", p.TotalCommands())
	}
	if p.CommandStr() != `Map "a"` {
		t.Errorf("Expected current command %q, got %q", `Map "a"`, p.CommandStr())
	}

	p.Advance()
	p.Advance()
	if p.Progress() != 50 {
		t.Errorf("Expected 50%% progress, got %d", p.Progress())
	}
	p.Advance()
	p.Advance()
	p.Advance()
	if !p.IsFinished() || p.NextCommand() != nil {
		t.Error("Expected player to be finished")
	}
	if p.CommandStr() != "Script finished" {
		t.Errorf("Expected finished message, got %q", p.CommandStr())
	}

	p.Reset()
	if p.CurrentIndex() != 0 || p.IsFinished() {
		t.Error("Expected Reset to rewind the player")
	}
}

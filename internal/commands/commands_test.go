// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_NotACommand(t *testing.T) {
	p := NewParser(NewRegistry())

	for _, input := range []string{"how do I rush?", "", "/", "/ spaced", "  headshot /tips"} {
		if r := p.Parse(input); r.IsCommand {
			t.Errorf("Parse(%q).IsCommand = true", input)
		}
	}
}

func TestParse_Commands(t *testing.T) {
	p := NewParser(NewRegistry())

	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{"/help", Help, nil},
		{"/?", Help, nil},
		{"  /EXPORT html ", Export, []string{"html"}},
		{"/e", Export, nil},
		{"/sources faded wheel", Sources, []string{"faded wheel"}},
		{"/resume conv_ab12", Resume, []string{"conv_ab12"}},
		{"/clear", New, nil},
		{"/exit", Quit, nil},
	}

	for _, tt := range tests {
		r := p.Parse(tt.input)
		if !r.IsCommand || r.Error != nil {
			t.Errorf("Parse(%q) = command %v, error %v", tt.input, r.IsCommand, r.Error)
			continue
		}
		if r.Command.Name != tt.wantName {
			t.Errorf("Parse(%q).Command = %s, want %s", tt.input, r.Command.Name, tt.wantName)
		}
		if !reflect.DeepEqual(r.Args, tt.wantArgs) {
			t.Errorf("Parse(%q).Args = %q, want %q", tt.input, r.Args, tt.wantArgs)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	p := NewParser(NewRegistry())

	r := p.Parse("/dance")
	if r.Command != nil || r.Error == nil || !strings.Contains(r.Error.Error(), "unknown command: /dance") {
		t.Errorf("unknown command result = %+v", r)
	}

	r = p.Parse("/export pdf")
	var verr *ValidationError
	if !errors.As(r.Error, &verr) || verr.Got != "pdf" {
		t.Errorf("invalid enum error = %v", r.Error)
	}

	r = p.Parse("/resume")
	if !errors.As(r.Error, &verr) || verr.Arg != "id" {
		t.Errorf("missing arg error = %v", r.Error)
	}

	r = p.Parse("/save now please")
	if !errors.As(r.Error, &verr) || verr.Message != "too many arguments" {
		t.Errorf("extra args error = %v", r.Error)
	}
}

func TestSplitCommandLine(t *testing.T) {
	got := splitCommandLine(`a "b c" 'd \'e' ""`)
	want := []string{"a", "b c", "d 'e", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCommandLine() = %q, want %q", got, want)
	}
}

func TestParseResult_Arg(t *testing.T) {
	r := ParseResult{Args: []string{"md"}}
	if r.Arg(0) != "md" || r.Arg(1) != "" || r.Arg(-1) != "" {
		t.Errorf("Arg() returned unexpected values")
	}
}

func TestRegistry_HelpText(t *testing.T) {
	text := NewRegistry().HelpText()
	for _, want := range []string{"## Conversation", "`/export [md|html|json]`", "(/q, /exit)", "## Sources"} {
		if !strings.Contains(text, want) {
			t.Errorf("HelpText() missing %q", want)
		}
	}
}

func values(completions []Completion) []string {
	out := make([]string, 0, len(completions))
	for _, c := range completions {
		out = append(out, c.Value)
	}
	return out
}

func TestCompleter(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ConversationsFn = func() []ConversationInfo {
		return []ConversationInfo{
			{ID: "conv_b2", Summary: "newer"},
			{ID: "conv_a1", Summary: "older"},
		}
	}

	if got := values(c.Complete("/ex")); !reflect.DeepEqual(got, []string{"/export", "/exit"}) {
		t.Errorf("Complete(/ex) = %q", got)
	}
	if got := values(c.Complete("/export h")); !reflect.DeepEqual(got, []string{"html"}) {
		t.Errorf("Complete(/export h) = %q", got)
	}
	if got := values(c.Complete("/export ")); len(got) != 3 {
		t.Errorf("Complete(/export ) = %q", got)
	}
	if got := values(c.Complete("/resume ")); !reflect.DeepEqual(got, []string{"conv_b2", "conv_a1"}) {
		t.Errorf("Complete(/resume ) = %q", got)
	}
	if got := values(c.Complete("/resume a")); !reflect.DeepEqual(got, []string{"conv_a1"}) {
		t.Errorf("Complete(/resume a) = %q", got)
	}
	if got := c.Complete("hello"); got != nil {
		t.Errorf("Complete(hello) = %v", got)
	}

	if got := c.CompleteLine("/export j"); !reflect.DeepEqual(got, []string{"/export json"}) {
		t.Errorf("CompleteLine() = %q", got)
	}
}

func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()
	if cs.Visible() || cs.Accept() != "" {
		t.Fatal("new state should be empty")
	}

	cs.Update("/export ", []Completion{{Value: "md"}, {Value: "html"}})
	if got := cs.Accept(); got != "/export md" {
		t.Errorf("Accept() = %q", got)
	}
	cs.Next()
	if got := cs.Accept(); got != "/export html" {
		t.Errorf("Accept() after Next = %q", got)
	}
	cs.Next()
	cs.Prev()
	if cs.Selected != 1 {
		t.Errorf("Selected = %d, want 1", cs.Selected)
	}

	cs.Clear()
	if cs.Visible() {
		t.Error("Clear() left completions")
	}
}

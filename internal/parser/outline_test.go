package parser

import (
	"testing"
)

func TestParseOutline_Nesting(t *testing.T) {
	input := []byte("title:: Mar 15th, 2024\n" +
		"- Morning\n" +
		"\t- #habit Meditation 7:00 AM\n" +
		"\t  id:: 65f3a1b2-0000-4000-8000-000000000001\n" +
		"\t\t- deep child\n" +
		"- Evening\n" +
		"  - #habit Reading\n")

	blocks := ParseOutline(input)
	if len(blocks) != 2 {
		t.Fatalf("roots = %d, want 2", len(blocks))
	}
	if blocks[0].Content != "Morning" || blocks[1].Content != "Evening" {
		t.Errorf("root contents = %q, %q", blocks[0].Content, blocks[1].Content)
	}
	if len(blocks[0].Children) != 1 {
		t.Fatalf("morning children = %d, want 1", len(blocks[0].Children))
	}
	child := blocks[0].Children[0]
	if child.Content != "#habit Meditation 7:00 AM" {
		t.Errorf("child content = %q", child.Content)
	}
	if child.UUID != "65f3a1b2-0000-4000-8000-000000000001" {
		t.Errorf("child uuid = %q", child.UUID)
	}
	if len(child.Children) != 1 || child.Children[0].Content != "deep child" {
		t.Errorf("grandchild = %+v", child.Children)
	}
	if len(blocks[1].Children) != 1 || blocks[1].Children[0].Content != "#habit Reading" {
		t.Errorf("space-indented child = %+v", blocks[1].Children)
	}
}

func TestParseOutline_Continuation(t *testing.T) {
	input := []byte("- first line\n  second line\n  status:: done\n- next\n")
	blocks := ParseOutline(input)
	if len(blocks) != 2 {
		t.Fatalf("roots = %d, want 2", len(blocks))
	}
	if blocks[0].Content != "first line\nsecond line\nstatus:: done" {
		t.Errorf("content = %q", blocks[0].Content)
	}
}

func TestParseOutline_PlainParagraph(t *testing.T) {
	blocks := ParseOutline([]byte("alias:: x\n\nJust text #habit Walk\n"))
	if len(blocks) != 1 {
		t.Fatalf("roots = %d, want 1", len(blocks))
	}
	if blocks[0].Content != "Just text #habit Walk" {
		t.Errorf("content = %q", blocks[0].Content)
	}
}

func TestParseOutline_Empty(t *testing.T) {
	if blocks := ParseOutline(nil); len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
	blocks := ParseOutline([]byte("-\n"))
	if len(blocks) != 1 || blocks[0].Content != "" {
		t.Errorf("empty bullet = %+v", blocks)
	}
}

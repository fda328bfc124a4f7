package logseq

import (
	"bytes"
	"encoding/json"

	"github.com/starford/habitdash/internal/models"
)

// wirePage is the page entity as the Logseq API returns it.
type wirePage struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	JournalDay   int    `json:"journalDay"`
}

func (p wirePage) model() models.Page {
	m := models.Page{Name: p.Name, OriginalName: p.OriginalName}
	if p.JournalDay > 0 {
		m.JournalDay = p.JournalDay
	}
	return m
}

// wireBlock is a block entity. Children are either nested block objects or,
// for collapsed and unloaded subtrees, ["uuid", "<id>"] references; the
// references are skipped.
type wireBlock struct {
	UUID     string            `json:"uuid"`
	Content  string            `json:"content"`
	Children []json.RawMessage `json:"children"`
}

func (b *wireBlock) model() *models.Block {
	out := &models.Block{UUID: b.UUID, Content: b.Content}
	for _, raw := range b.Children {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var child wireBlock
		if err := json.Unmarshal(raw, &child); err != nil {
			continue
		}
		out.Children = append(out.Children, child.model())
	}
	return out
}

func convertBlocks(blocks []wireBlock) []*models.Block {
	out := make([]*models.Block, 0, len(blocks))
	for i := range blocks {
		out = append(out, blocks[i].model())
	}
	return out
}

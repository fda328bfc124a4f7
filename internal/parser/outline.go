package parser

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/starford/habitdash/internal/models"
)

const idProperty = "id::"

type frame struct {
	level int
	block *models.Block
}

// ParseOutline reads Logseq outline markdown into a block tree. Bullets
// ("- ") start blocks, indentation (a tab or two spaces per level) nests
// them, and other lines continue the current block. An "id:: <uuid>"
// property sets the block UUID and is dropped from the content. Property
// lines before the first bullet are page properties and are skipped.
func ParseOutline(data []byte) []*models.Block {
	var roots []*models.Block
	var stack []frame
	var current *models.Block

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		level, rest := indentLevel(line)
		text := strings.TrimSpace(rest)

		if text == "-" || strings.HasPrefix(text, "- ") {
			b := &models.Block{Content: strings.TrimSpace(strings.TrimPrefix(text, "-"))}
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				roots = append(roots, b)
			} else {
				parent := stack[len(stack)-1].block
				parent.Children = append(parent.Children, b)
			}
			stack = append(stack, frame{level: level, block: b})
			current = b
			continue
		}

		if current == nil {
			if text == "" || isProperty(text) {
				continue
			}
			current = &models.Block{Content: text}
			roots = append(roots, current)
			stack = append(stack[:0], frame{level: level, block: current})
			continue
		}

		if strings.HasPrefix(strings.ToLower(text), idProperty) {
			current.UUID = strings.TrimSpace(text[len(idProperty):])
			continue
		}
		if text == "" {
			continue
		}
		if current.Content == "" {
			current.Content = text
		} else {
			current.Content += "\n" + text
		}
	}
	return roots
}

// indentLevel counts leading tabs and pairs of spaces.
func indentLevel(line string) (int, string) {
	level, spaces := 0, 0
	i := 0
loop:
	for ; i < len(line); i++ {
		switch line[i] {
		case '\t':
			level++
			spaces = 0
		case ' ':
			spaces++
			if spaces == 2 {
				level++
				spaces = 0
			}
		default:
			break loop
		}
	}
	return level, line[i:]
}

func isProperty(text string) bool {
	k, _, ok := strings.Cut(text, "::")
	return ok && k != "" && !strings.ContainsAny(k, " \t")
}

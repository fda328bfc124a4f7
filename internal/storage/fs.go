package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/habitdash/internal/apperr"
	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/parser"
)

// Graph directory layout.
const (
	JournalsDir = "journals"
	PagesDir    = "pages"
)

// blockNamespace seeds deterministic UUIDs for blocks without an id:: property.
var blockNamespace = uuid.MustParse("5c3b8a9e-3f1d-4b7a-9c55-1f0e6d2a7b40")

// Graph implements Provider over a Logseq graph directory.
type Graph struct {
	root    string // absolute path to the graph directory
	readDir func(string) ([]os.DirEntry, error)
}

var _ Provider = (*Graph)(nil)

// NewGraph creates a Graph rooted at the given directory.
// The directory must already exist.
func NewGraph(root string) (*Graph, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Graph{root: abs, readDir: os.ReadDir}, nil
}

// Root returns the absolute graph directory.
func (g *Graph) Root() string {
	return g.root
}

// safePath resolves a relative path against the graph root and rejects
// any result that escapes it (directory traversal).
func (g *Graph) safePath(rel string) (string, error) {
	if rel == "" {
		return g.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(g.root, cleaned)
	if !strings.HasPrefix(abs, g.root+string(os.PathSeparator)) && abs != g.root {
		return "", fmt.Errorf("storage: path escapes graph root: %s", rel)
	}
	return abs, nil
}

// GetAllPages lists journal pages (oldest first) followed by regular pages.
func (g *Graph) GetAllPages(_ context.Context) ([]models.Page, error) {
	journals, err := g.listDir(JournalsDir)
	if err != nil {
		return nil, err
	}
	pages, err := g.listDir(PagesDir)
	if err != nil {
		return nil, err
	}

	out := make([]models.Page, 0, len(journals)+len(pages))
	for _, stem := range journals {
		p := models.Page{Name: strings.ToLower(stem), OriginalName: stem}
		if day, ok := journalDay(stem); ok {
			p.JournalDay = day
		}
		out = append(out, p)
	}
	for _, stem := range pages {
		out = append(out, models.Page{Name: strings.ToLower(stem), OriginalName: stem})
	}
	return out, nil
}

// GetPageBlocksTree parses the page file into blocks. Blocks without an
// id:: property get a UUID derived from the page name and their position,
// so the same file always yields the same identifiers.
func (g *Graph) GetPageBlocksTree(_ context.Context, pageName string) ([]*models.Block, error) {
	rel, err := g.resolve(pageName)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		return nil, nil
	}
	data, err := g.read(rel)
	if err != nil {
		return nil, err
	}
	blocks := parser.ParseOutline(data)
	assignUUIDs(strings.ToLower(pageName), "", blocks)
	return blocks, nil
}

// GetPage returns the named page or nil when no file backs it.
func (g *Graph) GetPage(_ context.Context, name string) (*models.Page, error) {
	rel, err := g.resolve(name)
	if err != nil || rel == "" {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(rel), ".md")
	p := &models.Page{Name: strings.ToLower(stem), OriginalName: stem}
	if filepath.Dir(rel) == JournalsDir {
		if day, ok := journalDay(stem); ok {
			p.JournalDay = day
		}
	}
	return p, nil
}

// CreatePage writes pages/<name>.md with the given properties as
// "key:: value" lines. Options only matter to interactive hosts.
func (g *Graph) CreatePage(ctx context.Context, name string, properties map[string]string, _ PageOptions) (*models.Page, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("storage: invalid page name %q", name)
	}
	existing, err := g.GetPage(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("storage: page %q: %w", name, apperr.ErrAlreadyExists)
	}

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s:: %s\n", k, properties[k])
	}

	if err := g.write(filepath.Join(PagesDir, name+".md"), []byte(sb.String())); err != nil {
		return nil, err
	}
	return &models.Page{Name: strings.ToLower(name), OriginalName: name}, nil
}

// AppendBlockInPage appends a top-level bullet carrying a fresh id:: property.
func (g *Graph) AppendBlockInPage(_ context.Context, pageName, content string) (*models.Block, error) {
	rel, err := g.resolve(pageName)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		return nil, fmt.Errorf("storage: page %q: %w", pageName, apperr.ErrNotFound)
	}
	data, err := g.read(rel)
	if err != nil {
		return nil, err
	}

	b := &models.Block{UUID: uuid.NewString(), Content: content}
	var sb strings.Builder
	sb.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "- %s\n  id:: %s\n", content, b.UUID)

	if err := g.write(rel, []byte(sb.String())); err != nil {
		return nil, err
	}
	return b, nil
}

// resolve maps a page name to its file relative to the root, matching file
// stems case-insensitively. It returns "" when no file exists. Journal
// names (digits and separators only) are looked up directly; everything
// else falls back to listing journals/ and pages/.
func (g *Graph) resolve(name string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", nil
	}
	if _, ok := journalDay(want); ok {
		rel := filepath.Join(JournalsDir, want+".md")
		if g.isFile(rel) {
			return rel, nil
		}
	}
	for _, dir := range []string{JournalsDir, PagesDir} {
		stems, err := g.listDir(dir)
		if err != nil {
			return "", err
		}
		for _, stem := range stems {
			if strings.ToLower(stem) == want {
				return filepath.Join(dir, stem+".md"), nil
			}
		}
	}
	return "", nil
}

// listDir returns the sorted .md file stems directly under dir. A missing
// directory is an empty graph section, not an error.
func (g *Graph) listDir(dir string) ([]string, error) {
	abs, err := g.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := g.readDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w: %w", dir, apperr.ErrHost, err)
	}
	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(stems)
	return stems, nil
}

func (g *Graph) isFile(rel string) bool {
	abs, err := g.safePath(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

func (g *Graph) read(rel string) ([]byte, error) {
	abs, err := g.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w: %w", rel, apperr.ErrHost, err)
	}
	return data, nil
}

// write atomically writes content: tmp file → fsync → rename.
func (g *Graph) write(rel string, content []byte) error {
	abs, err := g.safePath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".habitdash-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// journalDay decodes a yyyy_MM_dd file stem into YYYYMMDD.
func journalDay(stem string) (int, bool) {
	digits := strings.NewReplacer("_", "", "-", "").Replace(stem)
	if len(digits) != 8 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func assignUUIDs(page, path string, blocks []*models.Block) {
	for i, b := range blocks {
		p := path + "/" + strconv.Itoa(i)
		if b.UUID == "" {
			b.UUID = uuid.NewSHA1(blockNamespace, []byte(page+p)).String()
		}
		assignUUIDs(page, p, b.Children)
	}
}

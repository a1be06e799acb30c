// Package vault adapts a directory of markdown files to the document-store
// contract the review pass consumes: list documents, read/write text, and
// answer link queries from a SQLite index rebuilt per pass.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// wikiLinkRE matches [[target]] and [[target|alias]] wiki links.
// Heading anchors ([[target#section]]) resolve to the target document.
var wikiLinkRE = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|[^\]]+)?\]\]`)

// Document is one markdown file in the vault.
type Document struct {
	Name    string // vault-relative name without the .md extension
	ModTime int64
}

// Edge is one directed link between documents.
type Edge struct {
	Source string
	Target string
}

// Vault is a filesystem-backed document store rooted at a directory.
type Vault struct {
	root string
	idx  *Index
}

// New opens a vault at root with its link index at indexPath.
// A leading ~ in root expands to the user's home directory.
func New(root, indexPath string) (*Vault, error) {
	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expand vault path: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", root)
	}

	idx, err := OpenIndex(indexPath)
	if err != nil {
		return nil, err
	}
	return &Vault{root: root, idx: idx}, nil
}

// Close releases the link index.
func (v *Vault) Close() error {
	return v.idx.Close()
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// ListDocuments returns the names of all markdown documents, sorted.
// Hidden directories (".obsidian" and friends) are skipped.
func (v *Vault) ListDocuments() ([]string, error) {
	var names []string
	err := filepath.Walk(v.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(info.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return nil
		}
		names = append(names, docName(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// GetText reads a document's full content.
func (v *Vault) GetText(name string) (string, error) {
	data, err := os.ReadFile(v.docPath(name))
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", name, err)
	}
	return string(data), nil
}

// WriteText replaces a document's content.
func (v *Vault) WriteText(name, text string) error {
	if err := os.WriteFile(v.docPath(name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}

// GetLinks returns the documents name links to, from the index.
func (v *Vault) GetLinks(name string) ([]string, error) {
	return v.idx.LinksFrom(name)
}

// AllLinks returns the indexed source → targets map for the whole vault.
func (v *Vault) AllLinks() (map[string][]string, error) {
	return v.idx.AllLinks()
}

// DocumentCount reports how many documents the index currently holds.
func (v *Vault) DocumentCount() (int, error) {
	return v.idx.DocumentCount()
}

// RebuildIndex scans every document's links and rebuilds the SQLite index.
// Called once at the start of each sync pass. Links to names that are not
// documents in the vault are dropped; self-links and duplicates collapse.
func (v *Vault) RebuildIndex() error {
	names, err := v.ListDocuments()
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	// Bare base names also resolve, the way wiki links usually do.
	byBase := make(map[string]string, len(names))
	for _, n := range names {
		byBase[filepath.Base(n)] = n
	}

	docs := make([]Document, 0, len(names))
	var edges []Edge
	seen := make(map[Edge]struct{})

	for _, name := range names {
		var mtime int64
		if info, err := os.Stat(v.docPath(name)); err == nil {
			mtime = info.ModTime().Unix()
		}
		docs = append(docs, Document{Name: name, ModTime: mtime})

		text, err := v.GetText(name)
		if err != nil {
			continue // unreadable documents contribute no edges
		}
		for _, target := range parseLinks(text) {
			resolved, ok := resolveTarget(target, known, byBase)
			if !ok || resolved == name {
				continue
			}
			e := Edge{Source: name, Target: resolved}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}

	return v.idx.Rebuild(docs, edges)
}

// parseLinks extracts raw wiki-link targets from document text.
func parseLinks(text string) []string {
	var targets []string
	for _, m := range wikiLinkRE.FindAllStringSubmatch(text, -1) {
		targets = append(targets, strings.TrimSpace(m[1]))
	}
	return targets
}

// resolveTarget maps a raw link target to a known document name, trying
// the full vault-relative name first and the bare base name second.
func resolveTarget(target string, known map[string]struct{}, byBase map[string]string) (string, bool) {
	name := docName(target)
	if _, ok := known[name]; ok {
		return name, true
	}
	if full, ok := byBase[name]; ok {
		return full, true
	}
	return "", false
}

// docName normalizes a vault-relative path to a document name: forward
// slashes, no .md extension, NFC so visually identical names compare equal.
func docName(rel string) string {
	name := filepath.ToSlash(rel)
	name = strings.TrimSuffix(name, ".md")
	return norm.NFC.String(name)
}

func (v *Vault) docPath(name string) string {
	return filepath.Join(v.root, filepath.FromSlash(name)+".md")
}

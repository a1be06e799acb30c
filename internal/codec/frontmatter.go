package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mnemo-srs/mnemo/internal/ident"
	"github.com/mnemo-srs/mnemo/internal/srs"
)

// Front-matter keys for whole-document note scheduling.
const (
	keyDue      = "sr-due"
	keyInterval = "sr-interval"
	keyEase     = "sr-ease"
	keyID       = "sr-id"
)

// frontMatterRE matches a leading YAML front-matter block.
var frontMatterRE = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---(\r?\n|\z)`)

// frontMatter is the scheduling subset of a note's front matter. Unrelated
// keys are ignored on read and preserved verbatim on write.
type frontMatter struct {
	Due      string `yaml:"sr-due"`
	Interval int    `yaml:"sr-interval"`
	Ease     int    `yaml:"sr-ease"`
	ID       string `yaml:"sr-id"`
}

// ParseFrontMatter decodes the note schedule from a document's YAML front
// matter. found is false when the document has no front matter or no
// sr-due key; a block that fails to parse returns an error so the caller
// can log it and treat the note as unscheduled.
func ParseFrontMatter(text string) (Item, bool, error) {
	m := frontMatterRE.FindStringSubmatch(text)
	if m == nil {
		return Item{}, false, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return Item{}, false, fmt.Errorf("parse front matter: %w", err)
	}
	if fm.Due == "" && fm.ID == "" {
		return Item{}, false, nil
	}

	item := Item{ID: fm.ID}
	if !ident.Valid(fm.ID) {
		item.ID = ""
	}
	if fm.Due != "" {
		due, err := srs.ParseDate(fm.Due)
		if err != nil {
			return Item{}, false, fmt.Errorf("front matter %s: %w", keyDue, err)
		}
		item.Schedule = srs.Schedule{Due: due, Interval: fm.Interval, Ease: fm.Ease}
	}
	return item, true, nil
}

// UpsertFrontMatter writes the note schedule into the document's front
// matter, creating the block when absent. Existing unrelated keys are kept
// byte-for-byte: only the sr-* lines are rewritten.
func UpsertFrontMatter(text string, item Item) string {
	lines := schedulingLines(item)

	m := frontMatterRE.FindStringSubmatchIndex(text)
	if m == nil {
		block := "---\n" + strings.Join(lines, "\n") + "\n---\n"
		return block + text
	}

	// m[2]:m[3] is the block body.
	body := text[m[2]:m[3]]
	kept := make([]string, 0, 8)
	for _, line := range strings.Split(body, "\n") {
		if isSchedulingLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	kept = append(kept, lines...)

	return text[:m[2]] + strings.Join(kept, "\n") + text[m[3]:]
}

// schedulingLines renders the sr-* keys for an item. An item with no due
// date (identity-only) gets only the sr-id line, so an identity backfill
// never invents schedule values.
func schedulingLines(item Item) []string {
	var lines []string
	if !item.Schedule.Due.IsZero() {
		lines = append(lines,
			keyDue+": "+item.Schedule.Due.String(),
			keyInterval+": "+strconv.Itoa(item.Schedule.Interval),
			keyEase+": "+strconv.Itoa(item.Schedule.Ease),
		)
	}
	if item.ID != "" {
		lines = append(lines, keyID+": "+item.ID)
	}
	return lines
}

func isSchedulingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, key := range []string{keyDue, keyInterval, keyEase, keyID} {
		if strings.HasPrefix(trimmed, key+":") {
			return true
		}
	}
	return false
}

// Package codec converts between schedule state and the textual annotation
// formats embedded in document content.
//
// Two formats exist: an inline HTML-comment marker for flashcards
// (multiple segments for multi-card documents) and a YAML front-matter
// block for whole-document notes. Both optionally embed the item's stable
// identifier; the legacy forms without one still parse.
package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mnemo-srs/mnemo/internal/ident"
	"github.com/mnemo-srs/mnemo/internal/srs"
)

// Item is one scheduled item decoded from an annotation.
type Item struct {
	// ID is the embedded stable identifier, or "" for legacy annotations
	// that predate identifiers.
	ID       string
	Schedule srs.Schedule
}

// markerRE matches the inline scheduling marker: <!--SR:!...-->.
var markerRE = regexp.MustCompile(`<!--SR:(![^>]*)-->`)

// ParseMarker decodes the first scheduling marker found in text.
//
// Each segment is "!date,interval,ease" with an optional fourth identifier
// field. A malformed segment is skipped and reported in the second return,
// never failing the parse of the remaining segments. found is false when
// text carries no marker at all.
func ParseMarker(text string) (items []Item, skipped []error, found bool) {
	m := markerRE.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}

	for i, seg := range strings.Split(m[1], "!") {
		if seg == "" {
			continue // leading separator
		}
		item, err := parseSegment(seg)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("marker segment %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, skipped, true
}

func parseSegment(seg string) (Item, error) {
	fields := strings.Split(seg, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return Item{}, fmt.Errorf("want 3 or 4 fields, got %d in %q", len(fields), seg)
	}

	due, err := srs.ParseDate(fields[0])
	if err != nil {
		return Item{}, err
	}
	interval, err := strconv.Atoi(fields[1])
	if err != nil {
		return Item{}, fmt.Errorf("interval %q: %w", fields[1], err)
	}
	ease, err := strconv.Atoi(fields[2])
	if err != nil {
		return Item{}, fmt.Errorf("ease %q: %w", fields[2], err)
	}

	item := Item{Schedule: srs.Schedule{Due: due, Interval: interval, Ease: ease}}
	if len(fields) == 4 {
		if !ident.Valid(fields[3]) {
			return Item{}, fmt.Errorf("malformed identifier %q", fields[3])
		}
		item.ID = fields[3]
	}
	return item, nil
}

// FormatMarker encodes items as an inline scheduling marker. Items with an
// identifier embed it as the fourth segment field.
func FormatMarker(items []Item) string {
	var b strings.Builder
	b.WriteString("<!--SR:")
	for _, item := range items {
		b.WriteByte('!')
		b.WriteString(item.Schedule.Due.String())
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(item.Schedule.Interval))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(item.Schedule.Ease))
		if item.ID != "" {
			b.WriteByte(',')
			b.WriteString(item.ID)
		}
	}
	b.WriteString("-->")
	return b.String()
}

// UpsertMarker replaces the existing scheduling marker in text, or appends
// one when the document has none yet.
func UpsertMarker(text string, items []Item) string {
	marker := FormatMarker(items)
	if markerRE.MatchString(text) {
		return markerRE.ReplaceAllLiteralString(text, marker)
	}
	if !strings.HasSuffix(text, "\n") && text != "" {
		text += "\n"
	}
	return text + marker + "\n"
}

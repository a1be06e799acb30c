package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-srs/mnemo/internal/srs"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "review-history.json")
}

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStore_OpenEmpty(t *testing.T) {
	s := openTestStore(t, tempStorePath(t))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.AllHistories())
}

func TestStore_RecordThenReadImmediately(t *testing.T) {
	s := openTestStore(t, tempStorePath(t))
	today := srs.NewDate(2025, time.March, 10)
	after := srs.Schedule{Due: today.AddDays(3), Interval: 3, Ease: 250}

	s.RecordReview("item-1", srs.Good, after, today)

	// No Flush: the in-memory mapping must already hold the entry.
	h, ok := s.History("item-1")
	require.True(t, ok)
	require.Len(t, h.History, 1)
	assert.Equal(t, Entry{Date: today, Response: srs.Good, Interval: 3, Ease: 250}, h.History[0])
	assert.Equal(t, today, h.Created)
	assert.Equal(t, today, h.LastReviewed)
}

func TestStore_RecordAppendsInOrder(t *testing.T) {
	s := openTestStore(t, tempStorePath(t))
	day1 := srs.NewDate(2025, time.March, 10)
	day2 := day1.AddDays(3)

	s.RecordReview("item-1", srs.Good, srs.Schedule{Due: day2, Interval: 3, Ease: 250}, day1)
	s.RecordReview("item-1", srs.Easy, srs.Schedule{Due: day2.AddDays(10), Interval: 10, Ease: 270}, day2)

	h, ok := s.History("item-1")
	require.True(t, ok)
	require.Len(t, h.History, 2)
	assert.Equal(t, srs.Good, h.History[0].Response)
	assert.Equal(t, srs.Easy, h.History[1].Response)
	assert.Equal(t, day1, h.Created, "created date keeps the first entry's date")
	assert.Equal(t, day2, h.LastReviewed)
}

func TestStore_HistoryCopiesAreIndependent(t *testing.T) {
	s := openTestStore(t, tempStorePath(t))
	today := srs.NewDate(2025, time.March, 10)
	s.RecordReview("item-1", srs.Good, srs.Schedule{Due: today.AddDays(3), Interval: 3, Ease: 250}, today)

	h, _ := s.History("item-1")
	h.History[0].Ease = 999
	h.History = append(h.History, Entry{})

	all := s.AllHistories()
	all["item-1"].History[0].Interval = 777
	delete(all, "item-1")

	fresh, ok := s.History("item-1")
	require.True(t, ok)
	require.Len(t, fresh.History, 1)
	assert.Equal(t, 250, fresh.History[0].Ease)
	assert.Equal(t, 3, fresh.History[0].Interval)
}

func TestStore_RoundTrip(t *testing.T) {
	path := tempStorePath(t)
	day := srs.NewDate(2025, time.March, 10)

	s := openTestStore(t, path)
	s.RecordReview("card-a", srs.Good, srs.Schedule{Due: day.AddDays(3), Interval: 3, Ease: 250}, day)
	s.RecordReview("card-a", srs.Hard, srs.Schedule{Due: day.AddDays(5), Interval: 2, Ease: 230}, day.AddDays(3))
	s.RecordReview("note-b", srs.Easy, srs.Schedule{Due: day.AddDays(12), Interval: 12, Ease: 270}, day)
	s.Flush()
	want := s.AllHistories()
	s.Close()

	reloaded := openTestStore(t, path)
	assert.Equal(t, want, reloaded.AllHistories())
}

func TestStore_LoadRejectsMissingVersion(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"cards":{},"metadata":{"lastUpdated":"2025-03-10T00:00:00Z"}}`), 0o644))

	s := openTestStore(t, path)
	assert.Equal(t, 0, s.Len(), "document missing version must load as empty")
}

func TestStore_LoadRejectsMalformedJSON(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "1", "cards": {`), 0o644))

	s := openTestStore(t, path)
	assert.Equal(t, 0, s.Len())
}

func TestStore_LoadRejectsWrongShape(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"cards as array", `{"version":"1","cards":[],"metadata":{"lastUpdated":"x"}}`},
		{"missing metadata", `{"version":"1","cards":{}}`},
		{"entry missing ease", `{"version":"1","cards":{"a":{"history":[{"date":"2025-03-10","response":"Good","interval":3}],"created":"2025-03-10","lastReviewed":"2025-03-10"}},"metadata":{"lastUpdated":"x"}}`},
		{"unknown response", `{"version":"1","cards":{"a":{"history":[{"date":"2025-03-10","response":"Meh","interval":3,"ease":250}],"created":"2025-03-10","lastReviewed":"2025-03-10"}},"metadata":{"lastUpdated":"x"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := tempStorePath(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))

			s := openTestStore(t, path)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_LoadValid(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	body := `{
		"version": "1",
		"cards": {
			"item-1": {
				"history": [
					{"date": "2025-03-10", "response": "Good", "interval": 3, "ease": 250}
				],
				"created": "2025-03-10",
				"lastReviewed": "2025-03-10"
			}
		},
		"metadata": {"lastUpdated": "2025-03-10T12:00:00Z"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := openTestStore(t, path)
	h, ok := s.History("item-1")
	require.True(t, ok)
	require.Len(t, h.History, 1)
	assert.Equal(t, srs.Good, h.History[0].Response)
}

func TestStore_FlushMakesWritesDurable(t *testing.T) {
	path := tempStorePath(t)
	s := openTestStore(t, path)
	today := srs.NewDate(2025, time.March, 10)

	s.RecordReview("item-1", srs.Good, srs.Schedule{Due: today.AddDays(3), Interval: 3, Ease: 250}, today)
	s.Flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, Version, doc.Version)
	assert.Contains(t, doc.Cards, "item-1")
	assert.False(t, doc.Metadata.LastUpdated.IsZero(), "writes must stamp metadata.lastUpdated")
}

func TestStore_ConcurrentRecords(t *testing.T) {
	s := openTestStore(t, tempStorePath(t))
	today := srs.NewDate(2025, time.March, 10)
	after := srs.Schedule{Due: today.AddDays(1), Interval: 1, Ease: 250}

	const items = 50
	var wg sync.WaitGroup
	for i := 0; i < items; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a'+n%26)) + "-" + srs.Date{Year: 2000 + n, Month: time.January, Day: 1}.String()
			s.RecordReview(id, srs.Good, after, today)
		}(i)
	}
	wg.Wait()
	s.Flush()

	assert.Equal(t, items, s.Len())
}

func TestStore_PersistedDocumentGolden(t *testing.T) {
	path := tempStorePath(t)
	s := openTestStore(t, path)
	s.now = func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}

	day := srs.NewDate(2025, time.March, 10)
	s.RecordReview("0191e2f3-0000-7000-8000-000000000001", srs.Good,
		srs.Schedule{Due: day.AddDays(3), Interval: 3, Ease: 250}, day)
	s.RecordReview("0191e2f3-0000-7000-8000-000000000001", srs.Easy,
		srs.Schedule{Due: day.AddDays(13), Interval: 10, Ease: 270}, day.AddDays(3))
	s.Flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "history_document", data)
}

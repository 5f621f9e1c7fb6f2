package status

import (
	"class-seat-monitor/internal/models"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(i int) models.StatusEntry {
	c := models.CourseIdentifier{Prefix: "CSE", Code: "1010", Section: fmt.Sprintf("%03d", i)}
	return models.NewStatusEntry(time.Unix(int64(i), 0), c, models.UnavailableOutcome())
}

func TestLog_RecordKeepsOrder(t *testing.T) {
	l := NewLog(0)
	for i := 1; i <= 3; i++ {
		l.Record(entry(i))
	}

	got := l.Entries()
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("%03d", i+1), e.Course.Section)
	}
}

func TestLog_EntriesIsSnapshot(t *testing.T) {
	l := NewLog(0)
	l.Record(entry(1))

	snap := l.Entries()
	snap[0].Message = "changed"
	l.Record(entry(2))

	assert.Len(t, snap, 1)
	assert.NotEqual(t, "changed", l.Entries()[0].Message)
	assert.Equal(t, 2, l.Len())
}

func TestLog_MaxEntriesEvictsOldest(t *testing.T) {
	l := NewLog(2)
	for i := 1; i <= 5; i++ {
		l.Record(entry(i))
	}

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "004", got[0].Course.Section)
	assert.Equal(t, "005", got[1].Course.Section)
}

func TestLog_SubscribeAndClear(t *testing.T) {
	l := NewLog(0)
	var seen []string
	l.Subscribe(func(e models.StatusEntry) { seen = append(seen, e.Course.Section) })

	l.Record(entry(1))
	l.Clear()
	l.Record(entry(2))

	assert.Equal(t, []string{"001", "002"}, seen)
	assert.Equal(t, 1, l.Len())
}

func TestLog_ConcurrentRecord(t *testing.T) {
	l := NewLog(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Record(entry(i))
			_ = l.Entries()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}

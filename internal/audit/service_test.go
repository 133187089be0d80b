package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStampedDefaultsZeroTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	entry := stamped(Entry{Action: "journal.post"}, now)
	require.Equal(t, now, entry.At)
}

func TestStampedKeepsCallerTime(t *testing.T) {
	at := time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

	entry := stamped(Entry{Action: "journal.post", At: at}, time.Now())
	require.Equal(t, at, entry.At)
}

func TestRecordRejectsIncompleteEntries(t *testing.T) {
	var nilLogger *Logger
	require.Error(t, nilLogger.Record(context.Background(), Entry{}))

	l := &Logger{}
	require.Error(t, l.Record(context.Background(), Entry{Action: "journal.post"}))
	require.Error(t, l.Record(context.Background(), Entry{Entity: "transaction", EntityID: "1"}))
}

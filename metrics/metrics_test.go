package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndSnapshotPreservesOrder(t *testing.T) {
	r := New(4)
	for i := 0; i < 3; i++ {
		r.Record(Record{Operation: "encrypt", Duration: time.Duration(i+1) * time.Millisecond})
	}
	snap := r.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, time.Millisecond, snap[0].Duration)
	require.Equal(t, 3*time.Millisecond, snap[2].Duration)
}

func TestRingBufferOverwritesOldestOnceFull(t *testing.T) {
	r := New(3)
	for i := 0; i < 5; i++ {
		r.Record(Record{Operation: "op", Duration: time.Duration(i+1) * time.Millisecond})
	}
	snap := r.Snapshot()
	require.Len(t, snap, 3)
	// only durations 3, 4, 5 (ms) should survive; 1 and 2 were overwritten.
	require.Equal(t, 3*time.Millisecond, snap[0].Duration)
	require.Equal(t, 4*time.Millisecond, snap[1].Duration)
	require.Equal(t, 5*time.Millisecond, snap[2].Duration)
}

func TestObserveRecordsDurationAndError(t *testing.T) {
	r := New(4)
	wantErr := errors.New("boom")
	err := r.Observe("decrypt", "fhe", func() error { return wantErr })
	require.Equal(t, wantErr, err)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "decrypt", snap[0].Operation)
	require.Equal(t, "fhe", snap[0].Component)
	require.Equal(t, wantErr, snap[0].Err)
}

func TestSummarizeGroupsByOperationAndCountsErrors(t *testing.T) {
	r := New(8)
	r.Record(Record{Operation: "encrypt", Duration: 10 * time.Millisecond})
	r.Record(Record{Operation: "encrypt", Duration: 20 * time.Millisecond})
	r.Record(Record{Operation: "encrypt", Duration: 30 * time.Millisecond, Err: errors.New("fail")})
	r.Record(Record{Operation: "decrypt", Duration: 5 * time.Millisecond})

	summaries, err := r.Summarize()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	var encryptSummary Summary
	for _, s := range summaries {
		if s.Operation == "encrypt" {
			encryptSummary = s
		}
	}
	require.Equal(t, 3, encryptSummary.Count)
	require.Equal(t, 1, encryptSummary.ErrorCount)
	require.Greater(t, encryptSummary.Mean, time.Duration(0))
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-controller/pkg/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "events.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping())

	ts := time.Unix(1700000000, 0).UTC()
	require.NoError(t, s.AppendEvent(model.Event{ID: "e1", Kind: model.EventLinkAdded, U: "A", V: "B", Capacity: 10, Timestamp: ts}))
	require.NoError(t, s.AppendEvent(model.Event{ID: "e2", Kind: model.EventFlowInstalled, FlowID: 1, Path: []string{"A", "B"}, Timestamp: ts}))
	require.NoError(t, s.AppendEvent(model.Event{ID: "e3", Kind: model.EventFlowBroken, FlowID: 1, Path: []string{"A", "B"}, Timestamp: ts}))

	all, err := s.ListEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e1", all[0].ID)
	assert.Equal(t, 10, all[0].Capacity)
	assert.True(t, ts.Equal(all[0].Timestamp))

	last, err := s.ListEvents(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e3"}, []string{last[0].ID, last[1].ID})

	hist, err := s.FlowHistory(1, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, model.EventFlowBroken, hist[1].Kind)
	assert.Equal(t, []string{"A", "B"}, hist[1].Path)
}

func TestSQLiteJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendEvent(model.Event{ID: "x", Kind: model.EventNodeAdded, Node: "A"}))
	require.NoError(t, s.Close())

	reopened, err := Open("sqlite", path, "", nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.IsType(t, &SQLiteStore{}, reopened)
	all, err := reopened.ListEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Node)
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	sess := &GroomSession{
		ID:           "sess-1",
		ProjectKey:   "PM",
		SourceIssue:  "PM-10",
		Kind:         "epic",
		InputSummary: "Unified search",
		InputText:    "We need search everywhere",
		Result:       `{"summary":"Unified search"}`,
	}
	require.NoError(t, s.SaveSession(sess))

	got, err := s.GetSession("sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PM-10", got.SourceIssue)
	assert.Equal(t, SessionGroomed, got.Status)
	assert.NotZero(t, got.CreatedAt)
}

func TestGetSession_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSession("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListSessions_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveSession(&GroomSession{ID: "a", ProjectKey: "PM", Kind: "epic", CreatedAt: 100}))
	require.NoError(t, s.SaveSession(&GroomSession{ID: "b", ProjectKey: "PM", Kind: "stories", CreatedAt: 200}))
	require.NoError(t, s.SaveSession(&GroomSession{ID: "c", ProjectKey: "OTHER", Kind: "epic", CreatedAt: 300}))

	sessions, err := s.ListSessions("PM", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID)
	assert.Equal(t, "a", sessions[1].ID)
}

func TestMarkSessionPublished(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveSession(&GroomSession{ID: "sess-1", ProjectKey: "PM", Kind: "stories"}))
	require.NoError(t, s.MarkSessionPublished("sess-1", "PM-11,PM-12"))

	got, err := s.GetSession("sess-1")
	require.NoError(t, err)
	assert.Equal(t, SessionPublished, got.Status)
	assert.Equal(t, "PM-11,PM-12", got.CreatedKeys)

	assert.Error(t, s.MarkSessionPublished("missing", "PM-1"))
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveTemplate(&PromptTemplate{Name: "epic-default", Kind: "epic", Body: "prompt body"}))

	got, err := s.GetTemplate("epic-default")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "prompt body", got.Body)

	// Upsert by name.
	require.NoError(t, s.SaveTemplate(&PromptTemplate{Name: "epic-default", Kind: "epic", Body: "updated"}))
	got, err = s.GetTemplate("epic-default")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Body)

	all, err := s.ListTemplates()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteTemplate("epic-default"))
	got, err = s.GetTemplate("epic-default")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, s.DeleteTemplate("epic-default"))
}

func TestProjectSnapshots_Replace(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveProjectSnapshots([]ProjectSnapshot{
		{Key: "PM", Name: "Product"},
		{Key: "ENG", Name: "Engineering"},
	}))

	snaps, err := s.ListProjectSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "ENG", snaps[0].Key)

	// A later sync fully replaces the set.
	require.NoError(t, s.SaveProjectSnapshots([]ProjectSnapshot{{Key: "PM", Name: "Product"}}))
	snaps, err = s.ListProjectSnapshots()
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

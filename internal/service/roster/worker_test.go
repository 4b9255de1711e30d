package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"
	"house_admin/internal/repository/postgres"
	"house_admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSheet struct {
	exports chan []domain.RosterRow
	err     error
}

func newRecordingSheet() *recordingSheet {
	return &recordingSheet{exports: make(chan []domain.RosterRow, 4)}
}

func (s *recordingSheet) ExportRoster(_ context.Context, rows []domain.RosterRow) error {
	if s.err != nil {
		return s.err
	}
	s.exports <- rows
	return nil
}

type stores struct {
	houses  *postgres.HouseRepository
	members *postgres.MemberRepository
	archive *postgres.ArchiveRepository
}

func seed(t *testing.T) stores {
	db := testutil.NewSQLiteDB(t)
	s := stores{
		houses:  postgres.NewHouseRepository(db),
		members: postgres.NewMemberRepository(db),
		archive: postgres.NewArchiveRepository(db),
	}
	ctx := context.Background()
	a := &model.House{HouseNumber: "202"}
	b := &model.House{HouseNumber: "101"}
	require.NoError(t, s.houses.InsertHouse(ctx, a))
	require.NoError(t, s.houses.InsertHouse(ctx, b))

	note := "vip"
	for _, m := range []model.Member{
		{HouseID: a.ID, MemberEmail: "z@x.com", ExpirationDate: testutil.Day("2026-12-31"), IsActive: true},
		{HouseID: a.ID, MemberEmail: "old@x.com", ExpirationDate: testutil.Day("2026-03-09"), IsActive: true},
		{HouseID: b.ID, MemberEmail: "b@x.com", Note: &note, IsActive: true},
		{HouseID: b.ID, MemberEmail: "a@x.com", ExpirationDate: testutil.Day("2026-03-10"), IsActive: true},
	} {
		m := m
		require.NoError(t, s.members.InsertMember(ctx, &m))
	}
	return s
}

func newTestWorker(t *testing.T, s stores, sheet domain.SheetService) *Worker {
	w := NewWorker(s.archive, s.members, s.houses, sheet, time.Hour, nil, zaptest.NewLogger(t),
		WithClock(testutil.Clock("2026-03-10")))
	t.Cleanup(w.Stop)
	return w
}

func TestRefresh_ArchivesAndExports(t *testing.T) {
	s := seed(t)
	sheet := newRecordingSheet()
	w := newTestWorker(t, s, sheet)

	archived, err := w.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	rows := <-sheet.exports
	require.Len(t, rows, 3)
	assert.Equal(t, "101", rows[0].HouseNumber)
	assert.Equal(t, "a@x.com", rows[0].MemberEmail)
	assert.Equal(t, "b@x.com", rows[1].MemberEmail)
	assert.Equal(t, "vip", rows[1].Note)
	assert.Nil(t, rows[1].ExpirationDate)
	assert.Equal(t, "202", rows[2].HouseNumber)
	assert.Equal(t, "z@x.com", rows[2].MemberEmail)

	gone, err := s.members.FindMemberByEmail(context.Background(), "old@x.com")
	require.NoError(t, err)
	assert.Nil(t, gone)

	list, err := s.archive.ListArchivedMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "202", list[0].HouseNumber)
	assert.Equal(t, model.ArchiveReasonExpired, list[0].ArchivedReason)

	archived, err = w.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, archived, "second run finds nothing to archive")
}

func TestRefresh_WithoutSheet(t *testing.T) {
	s := seed(t)
	w := newTestWorker(t, s, nil)

	archived, err := w.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, archived)
}

func TestRefresh_ExportError(t *testing.T) {
	s := seed(t)
	sheet := newRecordingSheet()
	sheet.err = errors.New("quota exceeded")
	w := newTestWorker(t, s, sheet)

	archived, err := w.Refresh(context.Background())
	assert.ErrorIs(t, err, sheet.err)
	assert.Equal(t, 1, archived, "archive commits even when the export fails")
}

func TestForceUpdate_TriggersRefresh(t *testing.T) {
	s := seed(t)
	sheet := newRecordingSheet()
	w := newTestWorker(t, s, sheet)

	w.ForceUpdate()
	select {
	case rows := <-sheet.exports:
		assert.Len(t, rows, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("force update did not export the roster")
	}

	w.Stop()
	w.Stop()
}

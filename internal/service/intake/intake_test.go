package intake

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"house_admin/internal/domain"
	"house_admin/internal/model"
	"house_admin/internal/repository/postgres"
	"house_admin/internal/service/membership"
	"house_admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type env struct {
	svc     *Service
	intake  *postgres.IntakeRepository
	houses  *postgres.HouseRepository
	members *postgres.MemberRepository
	signal  chan struct{}
}

func newEnv(t *testing.T) env {
	db := testutil.NewSQLiteDB(t)
	logger := zaptest.NewLogger(t)
	e := env{
		intake:  postgres.NewIntakeRepository(db),
		houses:  postgres.NewHouseRepository(db),
		members: postgres.NewMemberRepository(db),
		signal:  make(chan struct{}, 1),
	}
	rec := membership.NewReconciler(e.intake, e.houses, e.members, nil, logger)
	rec.SetClock(testutil.Clock("2026-03-10"))
	e.svc = NewService(e.intake, rec, e.signal, logger)
	return e
}

func signalled(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestCreate_SyncsMembership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, model.IntakeRecord{
		Email:          " a@x.com ",
		HouseGroup:     "101",
		ExpirationDate: testutil.Day("2026-12-31"),
		Channel:        model.ChannelLine,
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, model.SyncStatusOK, created.SyncStatus)
	assert.Equal(t, string(membership.OutcomeCreated), created.SyncNote)
	assert.True(t, signalled(e.signal))

	stored, err := e.intake.GetIntake(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusOK, stored.SyncStatus)

	m, err := e.members.FindMemberByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestCreate_WithoutHouseGroupStaysPending(t *testing.T) {
	e := newEnv(t)
	created, err := e.svc.Create(context.Background(), model.IntakeRecord{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusPending, created.SyncStatus)
	assert.Equal(t, "waiting for house group", created.SyncNote)
	assert.False(t, signalled(e.signal))
}

func TestCreate_WithoutEmailSkipsSync(t *testing.T) {
	e := newEnv(t)
	created, err := e.svc.Create(context.Background(), model.IntakeRecord{CustomerName: "walk-in guest", HouseGroup: "101"})
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusPending, created.SyncStatus)
	assert.Empty(t, created.SyncNote)

	hs, err := e.houses.ListHouses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hs)
}

func TestCreate_CapacityFailureKeepsRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	h := &model.House{HouseNumber: "101"}
	require.NoError(t, e.houses.InsertHouse(ctx, h))
	for i := 0; i < model.HouseCapacity; i++ {
		m := model.Member{HouseID: h.ID, MemberEmail: fmt.Sprintf("m%d@x.com", i)}
		require.NoError(t, e.members.InsertMember(ctx, &m))
	}

	created, err := e.svc.Create(ctx, model.IntakeRecord{Email: "late@x.com", HouseGroup: "101"})
	require.Error(t, err)

	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.True(t, domain.IsCapacity(err))
	assert.Contains(t, err.Error(), "saved")
	require.NotNil(t, created, "committed record is returned with the sync error")
	assert.Equal(t, created.ID, syncErr.RecordID)
	assert.Equal(t, model.SyncStatusError, created.SyncStatus)

	stored, err := e.intake.GetIntake(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "late@x.com", stored.Email)
	assert.Equal(t, model.SyncStatusError, stored.SyncStatus)
	assert.Contains(t, stored.SyncNote, "full (5/5)")
}

func TestCreate_RejectsUnknownEnums(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Create(context.Background(), model.IntakeRecord{Email: "a@x.com", Channel: "pigeon"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.svc.Create(context.Background(), model.IntakeRecord{Email: "a@x.com", CancelledOrMoved: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestUpdate_MovesAndExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, model.IntakeRecord{Email: "c@z.com", HouseGroup: "101", ExpirationDate: testutil.Day("2026-12-31")})
	require.NoError(t, err)
	signalled(e.signal)

	group := "102"
	updated, err := e.svc.Update(ctx, created.ID, model.IntakePatch{HouseGroup: &group})
	require.NoError(t, err)
	assert.Equal(t, string(membership.OutcomeMoved), updated.SyncNote)
	assert.True(t, signalled(e.signal))

	h102, err := e.houses.FindHouseByNumber(ctx, "102")
	require.NoError(t, err)
	m, err := e.members.FindMemberByEmail(ctx, "c@z.com")
	require.NoError(t, err)
	assert.Equal(t, h102.ID, m.HouseID)

	past := testutil.Day("2026-01-01")
	updated, err = e.svc.Update(ctx, created.ID, model.IntakePatch{ExpirationDate: &past})
	require.NoError(t, err)
	assert.Equal(t, string(membership.OutcomeRemoved), updated.SyncNote)

	m, err = e.members.FindMemberByEmail(ctx, "c@z.com")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestUpdate_MissingRecord(t *testing.T) {
	e := newEnv(t)
	group := "101"
	_, err := e.svc.Update(context.Background(), 404, model.IntakePatch{HouseGroup: &group})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := model.Channel("fax")
	_, err = e.svc.Update(context.Background(), 1, model.IntakePatch{Channel: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

type brokenSync struct{ err error }

func (b brokenSync) SyncMembershipByEmail(context.Context, string) (membership.Outcome, error) {
	return membership.OutcomeStoreError, b.err
}

func TestCreate_StoreErrorDuringSync(t *testing.T) {
	e := newEnv(t)
	storeErr := errors.New("i/o timeout")
	svc := NewService(e.intake, brokenSync{err: storeErr}, nil, zaptest.NewLogger(t))

	created, err := svc.Create(context.Background(), model.IntakeRecord{Email: "a@x.com", HouseGroup: "101"})
	require.NotNil(t, created)
	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, domain.IsCapacity(err))
}

func TestDeleteAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.svc.Create(ctx, model.IntakeRecord{Email: "a@x.com", HouseGroup: "101"})
	require.NoError(t, err)
	b, err := e.svc.Create(ctx, model.IntakeRecord{Email: "b@x.com"})
	require.NoError(t, err)

	list, err := e.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "records without house group come first")

	require.NoError(t, e.svc.Delete(ctx, a.ID))
	_, err = e.svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

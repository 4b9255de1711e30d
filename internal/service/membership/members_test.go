package membership

import (
	"context"
	"fmt"
	"testing"

	"house_admin/internal/domain"
	"house_admin/internal/model"
	"house_admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemberService_CreateChecksCapacity(t *testing.T) {
	f := newFixture(t)
	svc := NewMemberService(f.members, f.houses, zaptest.NewLogger(t))
	ctx := context.Background()
	h := f.house(t, "101")

	for i := 0; i < model.HouseCapacity; i++ {
		m, err := svc.CreateMember(ctx, model.NewMember{HouseID: h.ID, MemberEmail: fmt.Sprintf(" m%d@x.com ", i)})
		require.NoError(t, err)
		assert.True(t, m.IsActive)
		assert.Equal(t, fmt.Sprintf("m%d@x.com", i), m.MemberEmail)
	}

	_, err := svc.CreateMember(ctx, model.NewMember{HouseID: h.ID, MemberEmail: "sixth@x.com"})
	assert.True(t, domain.IsCapacity(err))

	_, err = svc.CreateMember(ctx, model.NewMember{HouseID: h.ID, MemberEmail: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	_, err = svc.CreateMember(ctx, model.NewMember{MemberEmail: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestMemberService_CreateInactive(t *testing.T) {
	f := newFixture(t)
	svc := NewMemberService(f.members, f.houses, zaptest.NewLogger(t))
	ctx := context.Background()
	h := f.house(t, "101")

	off := false
	m, err := svc.CreateMember(ctx, model.NewMember{HouseID: h.ID, MemberEmail: "off@x.com", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, m.IsActive)

	stored, err := f.members.GetMember(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	active, err := f.members.ListActiveMembers(ctx, *testutil.Day("2026-03-10"))
	require.NoError(t, err)
	assert.Empty(t, active)

	on, err := svc.CreateMember(ctx, model.NewMember{HouseID: h.ID, MemberEmail: "on@x.com"})
	require.NoError(t, err)
	assert.True(t, on.IsActive, "active by default")
}

func TestMemberService_MoveIntoFullHouseNamesTarget(t *testing.T) {
	f := newFixture(t)
	svc := NewMemberService(f.members, f.houses, zaptest.NewLogger(t))
	ctx := context.Background()
	full := f.house(t, "101")
	other := f.house(t, "102")
	for i := 0; i < model.HouseCapacity; i++ {
		f.seat(t, full.ID, fmt.Sprintf("m%d@x.com", i), nil)
	}
	m := f.seat(t, other.ID, "mover@x.com", nil)

	_, err := svc.UpdateMember(ctx, m.ID, model.MemberPatch{HouseID: &full.ID})
	require.True(t, domain.IsCapacity(err))
	assert.EqualError(t, err, "house 101 is full (5/5)")
}

func TestMemberService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewMemberService(f.members, f.houses, zaptest.NewLogger(t))
	ctx := context.Background()
	a := f.house(t, "101")
	b := f.house(t, "102")
	m := f.seat(t, a.ID, "a@x.com", testutil.Day("2026-12-31"))

	moved, err := svc.UpdateMember(ctx, m.ID, model.MemberPatch{HouseID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.HouseID)

	blank := " "
	_, err = svc.UpdateMember(ctx, m.ID, model.MemberPatch{MemberEmail: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	zero := uint(0)
	_, err = svc.UpdateMember(ctx, m.ID, model.MemberPatch{HouseID: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	require.NoError(t, svc.DeleteMember(ctx, m.ID))
	_, err = f.members.GetMember(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteMember(ctx, m.ID), domain.ErrNotFound)
}

func TestCapacityChecker(t *testing.T) {
	f := newFixture(t)
	checker := NewCapacityChecker(f.members, f.houses)
	ctx := context.Background()
	full := f.house(t, "101")
	open := f.house(t, "102")
	var last model.Member
	for i := 0; i < model.HouseCapacity; i++ {
		last = f.seat(t, full.ID, fmt.Sprintf("m%d@x.com", i), nil)
	}
	f.seat(t, open.ID, "solo@x.com", nil)

	ok, err := checker.HasFreeSeat(ctx, full.ID, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.HasFreeSeat(ctx, full.ID, &last.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := checker.CountMembers(ctx, 4242, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	available, err := checker.AvailableHouses(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "102", available[0].HouseNumber)
	assert.Equal(t, int64(1), available[0].MemberCount)
}

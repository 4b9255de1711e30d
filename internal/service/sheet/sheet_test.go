package sheet

import (
	"context"
	"testing"
	"time"

	"house_admin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsFromOrder(t *testing.T) {
	assert.Equal(t, DefaultColumns, ColumnsFromOrder(""))
	assert.Equal(t, DefaultColumns, ColumnsFromOrder("   "))
	assert.Equal(t, []string{"Email", "House"}, ColumnsFromOrder(" Email , House,"))
}

func TestRosterValues(t *testing.T) {
	exp := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	rows := []domain.RosterRow{
		{HouseNumber: "101", MemberEmail: "a@x.com", ExpirationDate: &exp, IsActive: true, Note: "vip"},
		{HouseNumber: "102", MemberEmail: "b@x.com"},
	}

	values := RosterValues([]string{"House", "Email", "Expiration", "Active", "Note", "Phone"}, rows)
	require.Len(t, values, 3)
	assert.Equal(t, []interface{}{"House", "Email", "Expiration", "Active", "Note", "Phone"}, values[0])
	assert.Equal(t, []interface{}{"101", "a@x.com", "2026-12-31", true, "vip", ""}, values[1])
	assert.Equal(t, []interface{}{"102", "b@x.com", "", false, "", ""}, values[2])
}

func TestRosterValues_EmptyRoster(t *testing.T) {
	values := RosterValues(DefaultColumns, nil)
	require.Len(t, values, 1, "header only")
}

func TestNewSheetService_BadCredentials(t *testing.T) {
	_, err := NewSheetService(context.Background(), "%%%not-base64", "sheet", "0", 0, nil)
	assert.ErrorContains(t, err, "decode base64 credentials")
}

func TestWaitPacesCalls(t *testing.T) {
	s := &SheetService{PauseMs: 30, lastCall: time.Now()}
	start := time.Now()
	s.Wait()
	s.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

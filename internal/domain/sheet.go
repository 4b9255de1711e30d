package domain

import (
	"context"
	"time"
)

// RosterRow is one exported seat.
type RosterRow struct {
	HouseNumber    string
	MemberEmail    string
	ExpirationDate *time.Time
	IsActive       bool
	Note           string
}

type SheetService interface {
	ExportRoster(ctx context.Context, rows []RosterRow) error
}

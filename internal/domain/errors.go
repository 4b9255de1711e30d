package domain

import (
	"errors"
	"fmt"

	"house_admin/internal/model"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrHouseExists = errors.New("house number already exists")
	ErrInvalid     = errors.New("invalid input")
)

// CapacityError is returned when a write would put more than
// model.HouseCapacity members into a house.
type CapacityError struct {
	HouseID     uint
	HouseNumber string
	Count       int64
}

func (e *CapacityError) Error() string {
	if e.HouseNumber == "" {
		return fmt.Sprintf("house #%d is full (%d/%d)", e.HouseID, e.Count, model.HouseCapacity)
	}
	return fmt.Sprintf("house %s is full (%d/%d)", e.HouseNumber, e.Count, model.HouseCapacity)
}

// IsCapacity reports whether err carries a *CapacityError.
func IsCapacity(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

// SyncError means the intake write committed but the membership sync that
// followed it failed. The intake record is not rolled back.
type SyncError struct {
	RecordID uint
	Email    string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("intake record %d saved, but membership sync for %s failed: %v", e.RecordID, e.Email, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

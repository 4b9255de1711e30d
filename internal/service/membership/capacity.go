package membership

import (
	"context"

	"house_admin/internal/domain"
	"house_admin/internal/model"
)

// CapacityChecker answers seat questions. It only reads; the writes in
// domain.MemberRepo repeat the check atomically.
type CapacityChecker struct {
	Members domain.MemberRepo
	Houses  domain.HouseRepo
}

func NewCapacityChecker(members domain.MemberRepo, houses domain.HouseRepo) *CapacityChecker {
	return &CapacityChecker{Members: members, Houses: houses}
}

// CountMembers counts members of the house, leaving out excludeMemberID when
// set. An unknown house counts as empty.
func (c *CapacityChecker) CountMembers(ctx context.Context, houseID uint, excludeMemberID *uint) (int64, error) {
	return c.Members.CountMembers(ctx, houseID, excludeMemberID)
}

// HasFreeSeat reports whether one more member fits into the house.
func (c *CapacityChecker) HasFreeSeat(ctx context.Context, houseID uint, excludeMemberID *uint) (bool, error) {
	n, err := c.CountMembers(ctx, houseID, excludeMemberID)
	if err != nil {
		return false, err
	}
	return n < model.HouseCapacity, nil
}

// AvailableHouses lists houses with fewer than model.HouseCapacity members.
func (c *CapacityChecker) AvailableHouses(ctx context.Context) ([]model.HouseWithCount, error) {
	houses, err := c.Houses.ListHousesWithCount(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]model.HouseWithCount, 0, len(houses))
	for _, h := range houses {
		if h.HasFreeSeat() {
			available = append(available, h)
		}
	}
	return available, nil
}

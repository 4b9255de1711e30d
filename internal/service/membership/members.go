package membership

import (
	"context"
	"strings"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"go.uber.org/zap"
)

// MemberService is the direct admin path to the seat table. It shares the
// capacity rules with the reconciler.
type MemberService struct {
	logger  *zap.Logger
	Members domain.MemberRepo
	Houses  domain.HouseRepo
}

func NewMemberService(members domain.MemberRepo, houses domain.HouseRepo, logger *zap.Logger) *MemberService {
	return &MemberService{logger: logger, Members: members, Houses: houses}
}

func (s *MemberService) CreateMember(ctx context.Context, in model.NewMember) (*model.Member, error) {
	in.MemberEmail = strings.TrimSpace(in.MemberEmail)
	if in.MemberEmail == "" {
		return nil, domain.Invalidf("member email is required")
	}
	if in.HouseID == 0 {
		return nil, domain.Invalidf("house id is required")
	}
	member := in.Member()
	if err := s.Members.InsertMember(ctx, &member); err != nil {
		return nil, err
	}
	s.logger.Info("member created by admin",
		zap.Uint("member_id", member.ID),
		zap.Uint("house_id", member.HouseID),
		zap.String("email", member.MemberEmail),
	)
	return &member, nil
}

// UpdateMember applies an admin edit. Expiration and active flag edits are
// allowed but only last until the next sync of that email.
func (s *MemberService) UpdateMember(ctx context.Context, id uint, patch model.MemberPatch) (*model.Member, error) {
	if patch.MemberEmail != nil {
		trimmed := strings.TrimSpace(*patch.MemberEmail)
		if trimmed == "" {
			return nil, domain.Invalidf("member email cannot be empty")
		}
		patch.MemberEmail = &trimmed
	}
	if patch.HouseID != nil && *patch.HouseID == 0 {
		return nil, domain.Invalidf("house id cannot be zero")
	}
	member, err := s.Members.UpdateMember(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.ExpirationDate != nil || patch.IsActive != nil {
		s.logger.Warn("member projection overridden by admin",
			zap.Uint("member_id", id),
			zap.String("email", member.MemberEmail),
		)
	}
	return member, nil
}

func (s *MemberService) DeleteMember(ctx context.Context, id uint) error {
	if err := s.Members.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.logger.Info("member deleted by admin", zap.Uint("member_id", id))
	return nil
}

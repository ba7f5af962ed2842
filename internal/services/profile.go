package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// ProfileService handles profiles, caregiver links and elder scope resolution.
type ProfileService struct {
	store store.Store
}

func NewProfileService(s store.Store) *ProfileService {
	return &ProfileService{store: s}
}

func (s *ProfileService) CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if p.Role != model.RoleElder && p.Role != model.RoleCaregiver {
		return nil, fmt.Errorf("%w: role must be elder or caregiver", model.ErrValidation)
	}
	return s.store.Profiles().Create(ctx, p)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// ResolveElderContext maps an authenticated user to the elder whose data they
// may read. Elders always resolve to themselves; requestedElderID is ignored
// for them. Caregivers get the requested elder if a link exists, otherwise
// their first link, otherwise a nil ElderID. A caregiver with no links is not
// an error; the caller decides how to present the empty scope.
func (s *ProfileService) ResolveElderContext(ctx context.Context, userID, requestedElderID string) (*model.ElderContext, error) {
	p, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case model.RoleElder:
		id := p.UserID
		return &model.ElderContext{ElderID: &id, Role: model.RoleElder}, nil
	case model.RoleCaregiver:
		links, err := s.store.Links().ListByCaregiver(ctx, userID)
		if err != nil {
			return nil, err
		}
		if requestedElderID != "" {
			for _, l := range links {
				if l.ElderUserID == requestedElderID {
					id := requestedElderID
					return &model.ElderContext{ElderID: &id, Role: model.RoleCaregiver}, nil
				}
			}
			// Unlinked request falls through to the first link. Write
			// handlers compare the resolved id against the target, so this
			// never grants write access to the requested elder.
		}
		if len(links) > 0 {
			id := links[0].ElderUserID
			return &model.ElderContext{ElderID: &id, Role: model.RoleCaregiver}, nil
		}
		return &model.ElderContext{ElderID: nil, Role: model.RoleCaregiver}, nil
	default:
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrValidation, p.Role)
	}
}

// LinkElderByEmail links the calling caregiver to the elder account registered
// under elderEmail.
func (s *ProfileService) LinkElderByEmail(ctx context.Context, caregiverUserID, elderEmail string) error {
	if !strings.Contains(elderEmail, "@") {
		return fmt.Errorf("%w: invalid elder email", model.ErrValidation)
	}
	caller, err := s.store.Profiles().Get(ctx, caregiverUserID)
	if err != nil {
		return err
	}
	if caller.Role != model.RoleCaregiver {
		return fmt.Errorf("%w: only caregivers can link elders", model.ErrValidation)
	}
	return s.store.Links().LinkByEmail(ctx, caregiverUserID, elderEmail)
}

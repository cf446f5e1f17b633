package service

import (
	"context"
	"fmt"
	"strings"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
	"codearena/internal/realtime"

	"go.uber.org/zap"
)

// Broadcaster pushes an event to every live connection of one user.
type Broadcaster interface {
	Emit(userID, event string, payload interface{})
}

type UserService struct {
	userRepo    repository.UserRepository
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, broadcaster Broadcaster, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, broadcaster: broadcaster, logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

type ModerationRequest struct {
	Flag          *bool   `json:"flag,omitempty"`
	AccountStatus *string `json:"accountStatus,omitempty"`
	Role          *string `json:"role,omitempty"`
}

type ModerationResult struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Moderate applies the provided moderation attributes to a user and notifies
// every live connection of that user about each change. The database write
// decides the call's outcome; broadcast delivery is fire-and-forget.
func (s *UserService) Moderate(ctx context.Context, userID string, req ModerationRequest) (*ModerationResult, error) {
	upd := repository.ModerationUpdate{Flag: req.Flag}
	var messages []string

	if req.AccountStatus != nil {
		status := strings.TrimSpace(*req.AccountStatus)
		if status != model.AccountActive && status != model.AccountInactive {
			return nil, fmt.Errorf("unknown account status %q: %w", status, common.ErrBadRequest)
		}
		upd.AccountStatus = &status
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if role != model.RoleUser && role != model.RoleAdmin {
			return nil, fmt.Errorf("unknown role %q: %w", role, common.ErrBadRequest)
		}
		upd.Role = &role
	}

	user, err := s.userRepo.UpdateModeration(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("moderate user: %w", err)
	}

	if req.Flag != nil {
		if *req.Flag {
			messages = append(messages, "User has been flagged.")
			s.broadcaster.Emit(userID, realtime.EventUserFlagged, realtime.FlagPayload{
				Message: "Your account has been flagged by an administrator. Some functionalities have been blocked.",
				Flag:    true,
			})
		} else {
			messages = append(messages, "User flag has been removed.")
			s.broadcaster.Emit(userID, realtime.EventUserFlagged, realtime.FlagPayload{
				Message: "Your account has been unflagged. All functionalities restored.",
				Flag:    false,
			})
		}
	}
	if upd.AccountStatus != nil {
		messages = append(messages, fmt.Sprintf("Account status set to %q.", *upd.AccountStatus))
		s.broadcaster.Emit(userID, realtime.EventAccountStatusChanged, realtime.AccountStatusPayload{
			Message:       fmt.Sprintf("Your account status is now %q.", *upd.AccountStatus),
			AccountStatus: *upd.AccountStatus,
		})
	}
	if upd.Role != nil {
		messages = append(messages, fmt.Sprintf("User role updated to %q.", *upd.Role))
		s.broadcaster.Emit(userID, realtime.EventRoleChanged, realtime.RolePayload{
			Message: fmt.Sprintf("Your role has been updated to %q.", *upd.Role),
			Role:    *upd.Role,
		})
	}

	message := "No changes applied."
	if len(messages) > 0 {
		message = strings.Join(messages, " ")
	}
	return &ModerationResult{Message: message, User: user}, nil
}

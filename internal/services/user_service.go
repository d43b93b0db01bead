package services

import (
	"context"
	"fmt"
	"strings"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/jmoiron/sqlx"
)

type UserService struct {
	DB        *sqlx.DB
	Users     repositories.UserRepo
	RequestID string
}

func (s UserService) users() repositories.UserRepo {
	if s.Users.DB != nil {
		return s.Users
	}
	if s.DB != nil {
		return repositories.UserRepo{DB: s.DB}
	}
	return repositories.UserRepo{DB: intconfig.DB}
}

func (s UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToPublic())
	}
	return out, nil
}

func (s UserService) Get(ctx context.Context, id int64) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(), nil
}

// Update changes a user's name and/or role.
func (s UserService) Update(ctx context.Context, id int64, name, role *string) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	if name != nil {
		n := utils.NormalizeSpace(*name)
		if n == "" {
			return models.PublicUser{}, domain.ValidationError{Field: "name", Msg: "required"}
		}
		u.Name = n
	}
	if role != nil {
		r := strings.ToLower(strings.TrimSpace(*role))
		if r != domain.RoleAdmin && r != domain.RoleCustomer {
			return models.PublicUser{}, domain.ValidationError{Field: "role", Msg: "must be admin or customer"}
		}
		u.Role = r
	}
	if err := s.users().Update(ctx, u); err != nil {
		return models.PublicUser{}, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "user", "update", fmt.Sprintf("user_id=%d role=%s", id, u.Role))
	return u.ToPublic(), nil
}

// Delete removes a user; their bookings stay with user_id cleared.
func (s UserService) Delete(ctx context.Context, rc domain.RequestContext, id int64) error {
	if int64(rc.UserID) == id {
		return domain.ConflictError{Resource: "user", Msg: "cannot delete your own account"}
	}
	if err := s.users().Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "user", "delete", fmt.Sprintf("user_id=%d", id))
	return nil
}

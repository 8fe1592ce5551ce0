package service

import (
	"strings"

	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	Register(req *RegisterRequest) (*model.User, error)
	UpdateUser(id uuid.UUID, req *UpdateUserRequest) (*model.User, error)
	DeleteUser(id uuid.UUID) error
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Name     string     `json:"name" validate:"notblank"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role"`
	Address  string     `json:"address"`
}

// UpdateUserRequest only changes the fields that are present
type UpdateUserRequest struct {
	Name     *string     `json:"name" validate:"omitempty,notblank"`
	Password *string     `json:"password" validate:"omitempty,min=6"`
	Role     *model.Role `json:"role"`
	Address  *string     `json:"address"`
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) Register(req *RegisterRequest) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return nil, invalid("role must be customer or admin")
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrDuplicateEmail
	}

	user := &model.User{
		Email:   model.NormalizeEmail(req.Email),
		Name:    strings.TrimSpace(req.Name),
		Role:    role,
		Address: req.Address,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, duplicate(err, ErrDuplicateEmail)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return user, nil
}

func (s *userService) UpdateUser(id uuid.UUID, req *UpdateUserRequest) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, invalid("role must be customer or admin")
		}
		user.Role = *req.Role
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(id uuid.UUID) error {
	if err := s.userRepo.Delete(id); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	return nil
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	resp := user.ToResponse()
	return &resp, nil
}

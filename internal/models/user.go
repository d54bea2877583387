package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin         UserRole = "SUPER_ADMIN"
	RoleInstitutionManager UserRole = "INSTITUTION_MANAGER"
	RoleTeacher            UserRole = "TEACHER"
	RoleStudent            UserRole = "STUDENT"
	RoleClassHead          UserRole = "CLASS_HEAD"
)

// User represents an application user stored in the users table.
// Role-specific attributes are empty for roles that do not use them.
type User struct {
	ID                 string     `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	Name               string     `db:"name" json:"name"`
	Role               UserRole   `db:"role" json:"role"`
	InstitutionID      *string    `db:"institution_id" json:"institution_id"`
	Approved           bool       `db:"approved" json:"approved"`
	PasswordHash       string     `db:"password_hash" json:"password_hash"`
	MustChangePassword bool       `db:"must_change_password" json:"must_change_password"`
	Course             string     `db:"course" json:"course"`
	Level              string     `db:"level" json:"level"`
	ClassGroups        StringList `db:"class_groups" json:"class_groups"`
	Category           string     `db:"category" json:"category"`
	Department         string     `db:"department" json:"department"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// BelongsTo reports whether the user is scoped to the institution.
func (u *User) BelongsTo(institutionID string) bool {
	return u.InstitutionID != nil && *u.InstitutionID == institutionID
}

// View strips credentials for API responses.
func (u *User) View() UserView {
	return UserView{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		InstitutionID:      u.InstitutionID,
		Approved:           u.Approved,
		MustChangePassword: u.MustChangePassword,
		Course:             u.Course,
		Level:              u.Level,
		ClassGroups:        u.ClassGroups,
		Category:           u.Category,
		Department:         u.Department,
		CreatedAt:          u.CreatedAt,
	}
}

// UserView is the public representation of a user.
type UserView struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               UserRole   `json:"role"`
	InstitutionID      *string    `json:"institution_id,omitempty"`
	Approved           bool       `json:"approved"`
	MustChangePassword bool       `json:"must_change_password"`
	Course             string     `json:"course,omitempty"`
	Level              string     `json:"level,omitempty"`
	ClassGroups        StringList `json:"class_groups,omitempty"`
	Category           string     `json:"category,omitempty"`
	Department         string     `json:"department,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	InstitutionID string
	Role          UserRole
}

// CreateUserRequest is the payload administrators use to add institution members.
type CreateUserRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	Name          string     `json:"name" validate:"required"`
	InstitutionID string     `json:"institution_id" validate:"required"`
	Course        string     `json:"course"`
	Level         string     `json:"level"`
	ClassGroups   StringList `json:"class_groups"`
	Category      string     `json:"category"`
	Department    string     `json:"department"`
}

// PromoteRequest turns a student into a class head.
type PromoteRequest struct {
	Department string `json:"department" validate:"required"`
}

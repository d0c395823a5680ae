package auth

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

var (
	// ErrUnauthenticated indicates the operation needs a known caller and none was supplied.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the caller's role may not perform the operation.
	ErrForbidden = errors.New("insufficient permissions")
)

// Action names an operation guarded by a Policy.
type Action string

const (
	ActionListUsers              Action = "users.list"
	ActionCreateUser             Action = "users.create"
	ActionDeleteUser             Action = "users.delete"
	ActionCreateSubmission       Action = "submissions.create"
	ActionListSubmissions        Action = "submissions.list"
	ActionListStudentSubmissions Action = "submissions.list_student"
	ActionGradeSubmission        Action = "submissions.grade"
	ActionDeleteSubmission       Action = "submissions.delete"
	ActionWatchSubmissions       Action = "submissions.watch"
)

// Policy decides whether the caller bound to ctx may perform action.
type Policy interface {
	Authorize(ctx context.Context, action Action) error
}

// TrustPolicy allows every action. Callers are trusted to only use the routes
// their role was granted at login; nothing is re-verified.
type TrustPolicy struct{}

func (TrustPolicy) Authorize(context.Context, Action) error {
	return nil
}

// RolePolicy grants actions to roles. Actions without a rule are open to anyone.
type RolePolicy struct {
	rules map[Action]map[models.Role]struct{}
}

// NewRolePolicy returns the default role rules.
func NewRolePolicy() *RolePolicy {
	p := &RolePolicy{rules: make(map[Action]map[models.Role]struct{})}
	p.Allow(ActionListUsers, models.RoleAdmin)
	p.Allow(ActionCreateUser, models.RoleAdmin)
	p.Allow(ActionDeleteUser, models.RoleAdmin)
	p.Allow(ActionCreateSubmission, models.RoleStudent, models.RoleAdmin)
	p.Allow(ActionListSubmissions, models.RoleAdmin, models.RoleInstructor)
	p.Allow(ActionListStudentSubmissions, models.RoleAdmin, models.RoleInstructor, models.RoleStudent)
	p.Allow(ActionGradeSubmission, models.RoleAdmin, models.RoleInstructor)
	p.Allow(ActionDeleteSubmission, models.RoleAdmin, models.RoleInstructor)
	p.Allow(ActionWatchSubmissions, models.RoleAdmin, models.RoleInstructor)
	return p
}

// Allow grants action to roles, replacing any previous rule.
func (p *RolePolicy) Allow(action Action, roles ...models.Role) {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	p.rules[action] = allowed
}

func (p *RolePolicy) Authorize(ctx context.Context, action Action) error {
	allowed, ok := p.rules[action]
	if !ok {
		return nil
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if _, ok := allowed[actor.Role]; !ok {
		return ErrForbidden
	}
	return nil
}

// AuthorizeOwner rejects Student callers acting on a student key other than
// their own email. Other roles and anonymous callers pass; role rules are
// enforced separately by Policy.
func AuthorizeOwner(ctx context.Context, studentKey string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != models.RoleStudent {
		return nil
	}
	if studentKey != actor.Email {
		return ErrForbidden
	}
	return nil
}

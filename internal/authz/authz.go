// Package authz resolves who is calling and decides what they may do.
//
// Every permission lives in the rules table below; services call Authorize
// with an explicit Identity before touching the store.
package authz

import (
	"fmt"
	"strings"

	"devhub/internal/models"
)

// Identity is the resolved caller. The zero value is the anonymous caller.
type Identity struct {
	AccountID uint
	Role      models.Role
	TokenID   string
}

// Anonymous returns the identity used when no valid session is presented.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated reports whether the identity carries an account.
func (id Identity) Authenticated() bool {
	return id.AccountID != 0
}

// Action names an operation subject to authorization.
type Action int

const (
	ProjectCreate Action = iota + 1
	ProjectUpdate
	ProjectDelete
	UpvoteAdd
	UpvoteRemove
	CommentCreate
	ContactCreate
	ContactMarkRead
	ContactList
	ProfileUpdate
	SkillManage
)

var actionNames = map[Action]string{
	ProjectCreate:   "project.create",
	ProjectUpdate:   "project.update",
	ProjectDelete:   "project.delete",
	UpvoteAdd:       "upvote.add",
	UpvoteRemove:    "upvote.remove",
	CommentCreate:   "comment.create",
	ContactCreate:   "contact.create",
	ContactMarkRead: "contact.mark_read",
	ContactList:     "contact.list",
	ProfileUpdate:   "profile.update",
	SkillManage:     "skill.manage",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Resource carries the ownership fields a rule may inspect.
type Resource struct {
	// OwnerID is the profile that owns the resource: the project developer,
	// the contact request recipient, the profile itself.
	OwnerID uint
	// OwnerRole and ContactVisible describe the target developer of a
	// contact request.
	OwnerRole      models.Role
	ContactVisible bool
}

type rule struct {
	requireIdentity bool
	roles           []models.Role
	owner           bool
	check           func(Identity, Resource) error
}

var rules = map[Action]rule{
	ProjectCreate:   {requireIdentity: true, roles: []models.Role{models.RoleDeveloper}},
	ProjectUpdate:   {requireIdentity: true, owner: true},
	ProjectDelete:   {requireIdentity: true, owner: true},
	UpvoteAdd:       {requireIdentity: true},
	UpvoteRemove:    {requireIdentity: true},
	CommentCreate:   {requireIdentity: true},
	ContactCreate:   {check: contactTargetOpen},
	ContactMarkRead: {requireIdentity: true, owner: true},
	ContactList:     {requireIdentity: true, roles: []models.Role{models.RoleDeveloper}, owner: true},
	ProfileUpdate:   {requireIdentity: true, owner: true},
	SkillManage:     {requireIdentity: true, roles: []models.Role{models.RoleDeveloper}, owner: true},
}

func contactTargetOpen(_ Identity, res Resource) error {
	if res.OwnerRole != models.RoleDeveloper {
		return models.NewNotFoundError("Developer", res.OwnerID)
	}
	if !res.ContactVisible {
		return models.NewForbiddenError("Developer is not accepting contact requests")
	}
	return nil
}

// Authorize decides whether id may perform action on res. Unknown actions are
// denied. The returned error is a *models.AppError.
func Authorize(id Identity, action Action, res Resource) error {
	r, ok := rules[action]
	if !ok {
		return models.NewUnauthorizedError("Unauthorized")
	}

	if r.requireIdentity && !id.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}

	if len(r.roles) > 0 && !hasRole(id.Role, r.roles) {
		return models.NewUnauthorizedError(fmt.Sprintf("Only %s accounts may perform this action", roleList(r.roles)))
	}

	if r.owner && id.AccountID != res.OwnerID {
		return models.NewUnauthorizedError("Unauthorized")
	}

	if r.check != nil {
		return r.check(id, res)
	}
	return nil
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func roleList(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, "/")
}

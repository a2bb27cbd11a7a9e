// Package policy decides which role may perform which operation on which
// resource. It holds no state; callers pass the requesting user (nil for
// anonymous requests).
package policy

import (
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
)

type Role int

const (
	RoleAnonymous Role = iota
	RoleMember
	RoleStaff
)

// Resources.
const (
	ResourceAuthors    = "authors"
	ResourceBooks      = "books"
	ResourceBorrowings = "borrowings"
	ResourceUsers      = "users"
)

// Operations.
const (
	OperationRead   = "read"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationReturn = "return"
	// OperationManage covers acting on other users' accounts.
	OperationManage = "manage"
)

type rule struct {
	// minimum role allowed; nil means nobody.
	min *Role
}

func allow(r Role) rule {
	return rule{min: &r}
}

var rules = map[string]map[string]rule{
	ResourceBooks: {
		OperationRead:   allow(RoleAnonymous),
		OperationCreate: allow(RoleStaff),
		OperationUpdate: allow(RoleStaff),
		OperationDelete: allow(RoleStaff),
	},
	ResourceAuthors: {
		OperationRead:   allow(RoleAnonymous),
		OperationCreate: allow(RoleStaff),
		OperationUpdate: allow(RoleStaff),
		OperationDelete: allow(RoleStaff),
	},
	ResourceBorrowings: {
		OperationRead:   allow(RoleMember),
		OperationCreate: allow(RoleMember),
		OperationReturn: allow(RoleStaff),
		OperationUpdate: {},
		OperationDelete: {},
	},
	ResourceUsers: {
		OperationRead:   allow(RoleMember),
		OperationCreate: allow(RoleAnonymous),
		OperationUpdate: allow(RoleMember),
		OperationManage: allow(RoleStaff),
	},
}

// RoleOf returns the role of the user. Inactive users have no more rights than
// anonymous ones.
func RoleOf(user *models.User) Role {
	switch {
	case user == nil || !user.IsActive:
		return RoleAnonymous
	case user.IsStaff:
		return RoleStaff
	default:
		return RoleMember
	}
}

type Decision int

const (
	Allow Decision = iota
	// DenyUnauthenticated means signing in could change the answer.
	DenyUnauthenticated
	// DenyForbidden means the user is signed in but lacks the role.
	DenyForbidden
	// DenyAlways means nobody may perform the operation.
	DenyAlways
)

// Decide returns whether the user may perform the operation on the resource.
func Decide(user *models.User, resource, operation string) Decision {
	r, ok := rules[resource][operation]
	if !ok || r.min == nil {
		return DenyAlways
	}
	role := RoleOf(user)
	switch {
	case role >= *r.min:
		return Allow
	case role == RoleAnonymous:
		return DenyUnauthenticated
	default:
		return DenyForbidden
	}
}

// Err returns the error to respond with for the decision, nil for Allow.
// method is the HTTP method of the request being decided on.
func (d Decision) Err(method string) error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return errcodes.Unauthorized("Authentication required")
	case DenyForbidden:
		return errcodes.Forbidden("This action")
	default:
		return errcodes.MethodNotAllowed(method)
	}
}

// CanViewBorrowing reports whether the user may see the borrowing. Only the
// borrower and staff can.
func CanViewBorrowing(user *models.User, borrowing *models.Borrowing) bool {
	switch RoleOf(user) {
	case RoleStaff:
		return true
	case RoleMember:
		return borrowing.UserID == user.ID
	default:
		return false
	}
}

// BorrowingScope returns the user IDs a borrowing listing is restricted to.
// Members only ever see their own borrowings, whatever they asked for. Staff
// get what they asked for, and nil (everything) when they didn't ask.
func BorrowingScope(user *models.User, requested []int) []int {
	if RoleOf(user) == RoleStaff {
		if len(requested) == 0 {
			return nil
		}
		return requested
	}
	if user == nil {
		return []int{}
	}
	return []int{user.ID}
}

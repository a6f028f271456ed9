// Package permissions decides whether a caller may act on a resource and
// restricts queries to the rows a caller is allowed to see.
//
// Rules are evaluated in a fixed order: anonymous callers are always denied,
// staff are always allowed, a user id embedded in the URL must match the
// caller, and otherwise the resource owner must match the caller. Object-level
// denials on rows that exist are reported as NotFound so that other users'
// data does not leak through status codes.
package permissions

import "net/http"

type Caller struct {
	ID            uint
	IsStaff       bool
	Authenticated bool
}

var Anonymous = Caller{}

type Decision int

const (
	Allowed Decision = iota
	Unauthenticated
	Forbidden
	NotFound
)

func (d Decision) Allowed() bool {
	return d == Allowed
}

// Status is the HTTP status a denial renders as.
func (d Decision) Status() int {
	switch d {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

func (d Decision) Message() string {
	switch d {
	case Unauthenticated:
		return "Authentication credentials were not provided."
	case Forbidden:
		return "You do not have permission to perform this action."
	case NotFound:
		return "Not found."
	default:
		return ""
	}
}

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// CanAccess reports whether caller may act on a row owned by targetOwnerID.
// Owned rows follow the same rule for reads and writes; project writes are
// decided by CheckProject instead.
func CanAccess(caller Caller, targetOwnerID uint, isWrite bool) bool {
	if !caller.Authenticated {
		return false
	}
	if caller.IsStaff {
		return true
	}
	return caller.ID == targetOwnerID
}

func CheckAuthenticated(caller Caller) Decision {
	if !caller.Authenticated {
		return Unauthenticated
	}
	return Allowed
}

func CheckStaff(caller Caller) Decision {
	if !caller.Authenticated {
		return Unauthenticated
	}
	if !caller.IsStaff {
		return Forbidden
	}
	return Allowed
}

// CheckUserScope guards routes of the form /users/{user_id}/...
func CheckUserScope(caller Caller, urlUserID uint) Decision {
	if !caller.Authenticated {
		return Unauthenticated
	}
	if caller.IsStaff || caller.ID == urlUserID {
		return Allowed
	}
	return Forbidden
}

// CheckObject guards a single existing row addressed by its own id.
func CheckObject(caller Caller, ownerID uint, isWrite bool) Decision {
	if !caller.Authenticated {
		return Unauthenticated
	}
	if CanAccess(caller, ownerID, isWrite) {
		return Allowed
	}
	return NotFound
}

// CheckProject lets every authenticated caller read and only staff write.
func CheckProject(caller Caller, isWrite bool) Decision {
	if isWrite {
		return CheckStaff(caller)
	}
	return CheckAuthenticated(caller)
}

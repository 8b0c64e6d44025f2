package household

import "errors"

// Kind classifies a domain error for the consuming layer.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindConflict
	KindNotFound
	KindIntegrity
)

// Error is a typed domain error. For every kind except KindIntegrity the
// Message is curated to be shown directly to the end user. Integrity errors
// signal data corruption: they are logged and must never reach a user
// verbatim.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

var (
	ErrInvalidName = &Error{KindValidation, "invalid_name",
		"Household name must be between 2 and 80 characters."}
	ErrCannotInviteSelf = &Error{KindValidation, "cannot_invite_self",
		"You cannot invite yourself."}

	ErrNotAdminInvite = &Error{KindAuthorization, "not_admin",
		"Only household admins can invite members."}
	ErrNotAdminChoreLock = &Error{KindAuthorization, "not_admin",
		"Only household admins can update chore lock settings."}
	ErrAdminCannotLeave = &Error{KindAuthorization, "admin_cannot_leave",
		"Household admins cannot leave. Transfer admin first."}

	// ErrAlreadyMember covers the caller's own existing membership; the
	// Target* variants describe somebody the caller is trying to invite.
	ErrAlreadyMember = &Error{KindConflict, "already_member",
		"This account is already linked to a household."}
	ErrTargetInThisHousehold = &Error{KindConflict, "already_member",
		"That user is already in this household."}
	ErrTargetInAnotherHousehold = &Error{KindConflict, "already_in_another_household",
		"That user is already in another household."}
	ErrPendingInviteThisHousehold = &Error{KindConflict, "already_invited",
		"That user already has a pending invite to this household."}
	ErrPendingInviteAnotherHousehold = &Error{KindConflict, "already_invited",
		"That user already has a pending invite to another household."}
	// ErrAlreadyInvited is the translation of the unique-index rejection
	// when two invites race; the pre-checks above produce the
	// household-specific variants on the slow path.
	ErrAlreadyInvited = &Error{KindConflict, "already_invited",
		"That user already has a pending invite."}

	ErrNotMember = &Error{KindNotFound, "not_member",
		"No household is linked to this account yet."}
	ErrUserNotFound = &Error{KindNotFound, "user_not_found",
		"No account was found with that username."}
	ErrInviteNotFound = &Error{KindNotFound, "invite_not_found",
		"That invite is no longer available."}
	ErrHouseholdNotFound = &Error{KindNotFound, "household_not_found",
		"The household for this invite no longer exists."}
	ErrMembershipNotFound = &Error{KindNotFound, "membership_not_found",
		"Your household membership was not found."}

	ErrOrphanedMembership = &Error{KindIntegrity, "orphaned_membership",
		"The household linked to this account no longer exists."}
	ErrMalformedIdentifier = &Error{KindIntegrity, "malformed_identifier",
		"A stored identifier is malformed."}
)

package auth

// Authorize decides whether the identity may act on a resource owned by
// ownerID. Policy, evaluated in order: superusers may act on anything;
// owners may act on their own resources; everything else is forbidden.
func Authorize(identity Identity, ownerID string) error {
	if identity.IsSuperuser {
		return nil
	}
	if ownerID != "" && identity.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// RequireSuperuser allows only identities with the superuser flag.
func RequireSuperuser(identity Identity) error {
	if identity.IsSuperuser {
		return nil
	}
	return ErrForbidden
}

package entity

import "github.com/google/uuid"

// Identity is an authenticated caller as established by the token middleware
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalCustomer
	PrincipalAdministrator
)

func (k PrincipalKind) String() string {
	switch k {
	case PrincipalCustomer:
		return RoleCustomer
	case PrincipalAdministrator:
		return RoleAdministrator
	default:
		return "anonymous"
	}
}

// Principal is the resolved role of the caller for a single request
type Principal struct {
	Kind   PrincipalKind
	UserID uuid.UUID
}

func AnonymousPrincipal() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

func CustomerPrincipal(userID uuid.UUID) Principal {
	return Principal{Kind: PrincipalCustomer, UserID: userID}
}

func AdministratorPrincipal(userID uuid.UUID) Principal {
	return Principal{Kind: PrincipalAdministrator, UserID: userID}
}

func (p Principal) IsAnonymous() bool {
	return p.Kind == PrincipalAnonymous
}

func (p Principal) IsAdministrator() bool {
	return p.Kind == PrincipalAdministrator
}

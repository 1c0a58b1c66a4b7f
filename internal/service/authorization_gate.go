package service

import (
	"context"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthorizationGate resolves the caller's role once per request
type AuthorizationGate interface {
	Resolve(ctx context.Context, identity *entity.Identity) entity.Principal
}

type authorizationGate struct {
	db       *gorm.DB
	log      *logrus.Logger
	roleRepo repository.RoleRepository
}

func NewAuthorizationGate(db *gorm.DB, log *logrus.Logger, roleRepo repository.RoleRepository) AuthorizationGate {
	return &authorizationGate{
		db:       db,
		log:      log,
		roleRepo: roleRepo,
	}
}

// Resolve never fails: a lookup error or a missing grant yields Customer.
func (g *authorizationGate) Resolve(ctx context.Context, identity *entity.Identity) entity.Principal {
	if identity == nil || identity.UserID == uuid.Nil {
		return entity.AnonymousPrincipal()
	}

	isAdmin, err := g.roleRepo.HasRole(ctx, g.db, identity.UserID, entity.RoleAdministrator)
	if err != nil {
		g.log.Warnf("Failed to resolve role for user %s, treating as customer: %+v", identity.UserID, err)
		return entity.CustomerPrincipal(identity.UserID)
	}
	if !isAdmin {
		return entity.CustomerPrincipal(identity.UserID)
	}

	return entity.AdministratorPrincipal(identity.UserID)
}

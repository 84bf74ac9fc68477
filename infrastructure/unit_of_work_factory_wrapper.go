package infrastructure

import (
	"dicehall/application"
	"dicehall/database"
	"dicehall/domain/interfaces"
	"dicehall/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide transactional publishers
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateForGuildWithPublisher(guildID int64, transactionalPublisher application.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements application.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) application.UnitOfWorkFactory {
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// CreateForGuild creates a new UnitOfWork with its own transactional event publisher
func (w *UnitOfWorkFactoryWrapper) CreateForGuild(guildID int64) application.UnitOfWork {
	return w.repoFactory.CreateForGuildWithPublisher(guildID, NewNATSTransactionalPublisher(w.eventPublisher))
}

package ports

import (
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

// RepoManager gives access to the repositories of the registry. It takes
// part to units of work, so that all changes made by a registry operation
// are committed or discarded together.
type RepoManager interface {
	uow.Transactional

	TradeRepository() domain.TradeRepository
	RegistryRepository() domain.RegistryRepository

	Close()
}

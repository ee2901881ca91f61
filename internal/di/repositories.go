// Package di provides dependency injection for repositories.
package di

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/modules/allocation"
	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories over the container's database
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	container.PositionRepo = portfolio.NewPositionRepository(container.DB.Conn(), log)
	container.TargetStateRepo = allocation.NewRepository(container.DB.Conn(), log)

	log.Info().Msg("Repositories initialized")
	return nil
}

package persistence

import (
	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
)

// Backends are the storage implementations selected by configuration.
type Backends struct {
	Stores      map[domain.Kind]repository.DocumentStore
	Audit       repository.AuditRepository
	Credentials repository.CredentialsRepository
	RepairQueue cascade.RepairQueue
}

// NewBackends picks Postgres and Redis implementations when they are configured and the
// in-memory ones otherwise.
func NewBackends(pg *Postgres, rdb *Redis, cfg config.RedisConfig) Backends {
	var b Backends
	if pg.Configured() {
		b.Stores = repository.NewPostgresStores(pg.Pool)
		b.Audit = repository.NewAuditRepository(pg.Pool)
		b.Credentials = repository.NewCredentialsRepository(pg.Pool)
	} else {
		b.Stores = repository.NewMemoryStores()
		b.Audit = repository.NewMemoryAuditRepository()
		b.Credentials = repository.NewMemoryCredentialsRepository()
	}
	if rdb.Configured() {
		b.RepairQueue = cascade.NewRedisRepairQueue(rdb.Client, cfg.RepairQueueKey)
	} else {
		b.RepairQueue = cascade.NewMemoryRepairQueue()
	}
	return b
}

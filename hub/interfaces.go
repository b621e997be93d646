package hub

import (
	"arcade/domain"
	"context"
)

type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

type CatalogSource interface {
	EntityCatalog(ctx context.Context) ([]domain.EntityTypeDef, error)
}

type StationSource interface {
	StationGraph(ctx context.Context) (domain.StationGraph, error)
}

// ScoreSubmitter satisfies both whack.ScoreSubmitter and route.ScoreSubmitter.
type ScoreSubmitter interface {
	Submit(sub domain.ScoreSubmission)
}

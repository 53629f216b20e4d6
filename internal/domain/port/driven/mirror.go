package driven

import (
	"context"
	"errors"
	"time"

	"github.com/web0101/protodir/internal/domain/model"
)

// ErrCacheEmpty indicates the local mirror cache holds no snapshot yet.
var ErrCacheEmpty = errors.New("mirror cache is empty")

// MirrorReader is the driven port for the unauthenticated, eventually
// consistent public mirror of the registry document.
type MirrorReader interface {
	Fetch(ctx context.Context) ([]model.Site, error)
}

// MirrorCache is the driven port for the local read-side cache of the last
// successfully mirrored snapshot. It is a fallback only, never a system of
// record.
type MirrorCache interface {
	Put(ctx context.Context, sites []model.Site, fetchedAt time.Time) error
	Get(ctx context.Context) ([]model.Site, time.Time, error)
}

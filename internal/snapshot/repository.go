package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/pageguard/internal/store"
)

// ErrNoData is returned by Load when no usable snapshot exists for a
// hostname. A malformed stored record is reported the same way.
var ErrNoData = errors.New("no data available for this page")

// Repository reads and writes snapshots in a shared store.
type Repository struct {
	store  store.Store
	logger *slog.Logger
}

// NewRepository creates a Repository over s. A nil logger uses slog.Default.
func NewRepository(s store.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: s, logger: logger}
}

// Save writes snap under the key for hostname, replacing any prior snapshot.
func (r *Repository) Save(ctx context.Context, hostname string, snap PageSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.store.Set(ctx, Key(hostname), data); err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", hostname, err)
	}
	return nil
}

// Load returns the latest snapshot for hostname.
func (r *Repository) Load(ctx context.Context, hostname string) (*PageSnapshot, error) {
	data, err := r.store.Get(ctx, Key(hostname))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for %s: %w", hostname, err)
	}

	var snap PageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.Warn("discarding malformed snapshot", "hostname", hostname, "error", err)
		return nil, ErrNoData
	}
	return &snap, nil
}

// Hostnames lists every hostname that has a stored snapshot.
func (r *Repository) Hostnames(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(keys))
	for _, k := range keys {
		if h, ok := HostnameFromKey(k); ok {
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}

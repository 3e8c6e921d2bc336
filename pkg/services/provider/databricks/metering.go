package databricks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// meteringStore reads SQL warehouse consumption from the
// system.billing.usage table.
type meteringStore struct {
	db *sql.DB
}

func newMeteringStore(db *sql.DB) *meteringStore {
	return &meteringStore{db: db}
}

type warehouseUsage struct {
	dbus  float64
	hours float64
}

func (s *meteringStore) warehouseUsage(ctx context.Context, days int) (map[string]warehouseUsage, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT
			usage_metadata.warehouse_id,
			SUM(usage_quantity),
			COUNT(DISTINCT date_trunc('HOUR', usage_start_time))
		FROM system.billing.usage
		WHERE usage_metadata.warehouse_id IS NOT NULL
			AND usage_start_time >= dateadd(DAY, ?, current_timestamp())
		GROUP BY usage_metadata.warehouse_id
	`

	rows, err := s.db.QueryContext(ctx, query, -days)
	if err != nil {
		return nil, fmt.Errorf("warehouse usage query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close usage query rows")
		}
	}(rows)

	usage := make(map[string]warehouseUsage)
	for rows.Next() {
		var id string
		var dbus float64
		var hours int64
		if err := rows.Scan(&id, &dbus, &hours); err != nil {
			return nil, err
		}
		usage[id] = warehouseUsage{dbus: dbus, hours: float64(hours)}
	}
	return usage, rows.Err()
}

package snowflake

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/config"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

const (
	Platform = "snowflake"

	// Metering history is aggregated hourly, so the row count per
	// warehouse approximates its active hours.
	meteringDays = 30
)

type snowflakeProvider struct {
	db *sql.DB
}

// ProviderFactory builds a Snowflake provider from the [snowflake] profile
// section.
func ProviderFactory(_ context.Context, profilePath string) (provider.Provider, error) {
	registry, err := config.NewRegistry(profilePath)
	if err != nil {
		return nil, err
	}
	section, err := registry.Section(Platform)
	if err != nil {
		return nil, err
	}

	cfg := &sf.Config{
		Account:   section["account"],
		User:      section["user"],
		Password:  section["password"],
		Database:  section["database"],
		Warehouse: section["warehouse"],
		Role:      section["role"],
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}
	return NewProvider(db), nil
}

func NewProvider(db *sql.DB) provider.Provider {
	return &snowflakeProvider{db: db}
}

func (p *snowflakeProvider) Platform() string { return Platform }

func (p *snowflakeProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{domain.ResourceWarehouse}
}

func (p *snowflakeProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	if t != domain.ResourceWarehouse {
		return nil, fmt.Errorf("resource type %q not supported by snowflake provider", t)
	}

	warehouses, err := p.showWarehouses(ctx, "")
	if err != nil {
		return nil, err
	}
	metering, err := p.meteringByWarehouse(ctx, meteringDays)
	if err != nil {
		return nil, err
	}

	snaps := make([]domain.Snapshot, 0, len(warehouses))
	for _, wh := range warehouses {
		usage := metering[wh.name]
		snaps = append(snaps, domain.Snapshot{
			Type:     domain.ResourceWarehouse,
			ID:       wh.name,
			Platform: Platform,
			State:    wh.state,
			Attributes: map[string]string{
				domain.AttrWarehouseSize: wh.size,
			},
			Metrics: map[string]float64{
				domain.MetricCreditsUsed:        usage.credits,
				domain.MetricHoursActive:        usage.hours,
				domain.MetricQueryCount:         usage.queries,
				domain.MetricAnalysisPeriodDays: meteringDays,
				domain.MetricAutoSuspendSeconds: float64(wh.autoSuspend),
			},
		})
	}
	return snaps, nil
}

type warehouseRow struct {
	name        string
	state       string
	size        string
	autoSuspend int64
}

// showWarehouses runs SHOW WAREHOUSES and picks the columns we care about
// by name, since the statement returns a wide and version-dependent row.
func (p *snowflakeProvider) showWarehouses(ctx context.Context, like string) ([]warehouseRow, error) {
	query := "SHOW WAREHOUSES"
	var args []any
	if like != "" {
		query += " LIKE ?"
		args = append(args, like)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}

	var result []warehouseRow
	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(sql.NullString)
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok {
				return ""
			}
			return values[i].(*sql.NullString).String
		}

		wh := warehouseRow{
			name:  field("name"),
			state: field("state"),
			size:  field("size"),
		}
		if raw := field("auto_suspend"); raw != "" {
			wh.autoSuspend, _ = strconv.ParseInt(raw, 10, 64)
		}
		result = append(result, wh)
	}
	return result, rows.Err()
}

type meteringUsage struct {
	credits float64
	hours   float64
	queries float64
}

func (p *snowflakeProvider) meteringByWarehouse(ctx context.Context, days int) (map[string]meteringUsage, error) {
	//language=SQL
	query := `
		SELECT
			warehouse_name,
			SUM(credits_used),
			COUNT(*)
		FROM snowflake.account_usage.warehouse_metering_history
		WHERE start_time >= dateadd(day, ?, current_timestamp())
		GROUP BY warehouse_name
	`

	rows, err := p.db.QueryContext(ctx, query, -days)
	if err != nil {
		return nil, fmt.Errorf("warehouse metering query failed: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]meteringUsage)
	for rows.Next() {
		var name string
		var credits float64
		var hours int64
		if err := rows.Scan(&name, &credits, &hours); err != nil {
			return nil, err
		}
		usage[name] = meteringUsage{credits: credits, hours: float64(hours)}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := p.queryCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	for name, queries := range counts {
		u := usage[name]
		u.queries = queries
		usage[name] = u
	}
	return usage, nil
}

func (p *snowflakeProvider) queryCounts(ctx context.Context, days int) (map[string]float64, error) {
	//language=SQL
	query := `
		SELECT
			warehouse_name,
			COUNT(*)
		FROM snowflake.account_usage.query_history
		WHERE start_time >= dateadd(day, ?, current_timestamp())
			AND warehouse_name IS NOT NULL
		GROUP BY warehouse_name
	`

	rows, err := p.db.QueryContext(ctx, query, -days)
	if err != nil {
		return nil, fmt.Errorf("query history query failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]float64)
	for rows.Next() {
		var name string
		var queries int64
		if err := rows.Scan(&name, &queries); err != nil {
			return nil, err
		}
		counts[name] = float64(queries)
	}
	return counts, rows.Err()
}

func (p *snowflakeProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	switch action.Kind {
	case domain.RecommendSuspend:
		return p.suspend(ctx, action.ResourceID)
	case domain.RecommendResize:
		size := action.Parameters["suggested_size"]
		if size == "" {
			return domain.ApplyResult{}, fmt.Errorf("resize action for %s has no suggested_size", action.ResourceID)
		}
		return p.exec(ctx, fmt.Sprintf("ALTER WAREHOUSE %q SET WAREHOUSE_SIZE = '%s'", action.ResourceID, size),
			fmt.Sprintf("warehouse resized to %s", size))
	case domain.RecommendSetAutoSuspend:
		seconds, err := strconv.Atoi(action.Parameters["suggested_auto_suspend_sec"])
		if err != nil {
			return domain.ApplyResult{}, fmt.Errorf("set_auto_suspend action for %s has invalid seconds: %w", action.ResourceID, err)
		}
		return p.exec(ctx, fmt.Sprintf("ALTER WAREHOUSE %q SET AUTO_SUSPEND = %d", action.ResourceID, seconds),
			fmt.Sprintf("auto suspend set to %ds", seconds))
	case domain.RecommendDrop:
		return p.exec(ctx, fmt.Sprintf("DROP WAREHOUSE %q", action.ResourceID), "warehouse dropped")
	default:
		return domain.ApplyResult{}, provider.ErrUnsupportedAction
	}
}

func (p *snowflakeProvider) suspend(ctx context.Context, name string) (domain.ApplyResult, error) {
	warehouses, err := p.showWarehouses(ctx, name)
	if err != nil {
		return domain.ApplyResult{}, err
	}
	if len(warehouses) == 1 && warehouses[0].state == "SUSPENDED" {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "warehouse already suspended"}, nil
	}
	return p.exec(ctx, fmt.Sprintf("ALTER WAREHOUSE %q SUSPEND", name), "warehouse suspended")
}

func (p *snowflakeProvider) exec(ctx context.Context, statement, detail string) (domain.ApplyResult, error) {
	if _, err := p.db.ExecContext(ctx, statement); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("statement failed: %w", err)
	}
	return domain.ApplyResult{Detail: detail}, nil
}

// CreateBackup records the warehouse configuration so a dropped warehouse
// can be recreated by hand.
func (p *snowflakeProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	warehouses, err := p.showWarehouses(ctx, action.ResourceID)
	if err != nil {
		return domain.BackupRef{}, err
	}
	if len(warehouses) == 0 {
		return domain.BackupRef{}, fmt.Errorf("warehouse %s not found", action.ResourceID)
	}

	wh := warehouses[0]
	artifact, err := json.Marshal(map[string]any{
		"name":         wh.name,
		"size":         wh.size,
		"state":        wh.state,
		"auto_suspend": wh.autoSuspend,
	})
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to serialize warehouse config: %w", err)
	}
	return domain.BackupRef{
		ID:       fmt.Sprintf("config-%s", wh.name),
		Kind:     "description",
		Artifact: artifact,
	}, nil
}

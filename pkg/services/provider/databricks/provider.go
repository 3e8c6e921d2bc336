package databricks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	dbx "github.com/databricks/databricks-sdk-go"
	dbxsql "github.com/databricks/databricks-sdk-go/service/sql"
	_ "github.com/databricks/databricks-sql-go"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/config"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

const (
	Platform = "databricks"

	defaultHTTPPath = "/sql/1.0/warehouses/warehouse"
	meteringDays    = 30

	// List price per DBU for SQL warehouses.
	dbuPriceUSD = 0.22
)

type databricksProvider struct {
	client   *dbx.WorkspaceClient
	metering *meteringStore
}

// ProviderFactory builds a Databricks provider from the [databricks]
// profile section. Metering comes from the system.billing.usage table over
// the SQL driver, so the section needs an http_path (or a warehouse to
// route queries through).
func ProviderFactory(_ context.Context, profilePath string) (provider.Provider, error) {
	registry, err := config.NewRegistry(profilePath)
	if err != nil {
		return nil, err
	}
	section, err := registry.Section(Platform)
	if err != nil {
		return nil, err
	}

	client, err := dbx.NewWorkspaceClient(&dbx.Config{
		Host:  section["host"],
		Token: section["token"],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create databricks client: %w", err)
	}

	httpPath := section["http_path"]
	if httpPath == "" {
		httpPath = defaultHTTPPath
	}
	dsn := fmt.Sprintf("token:%s@%s%s", section["token"], section["host"], httpPath)
	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open databricks sql connection: %w", err)
	}

	return NewProvider(client, newMeteringStore(db)), nil
}

func NewProvider(client *dbx.WorkspaceClient, metering *meteringStore) provider.Provider {
	return &databricksProvider{client: client, metering: metering}
}

func (p *databricksProvider) Platform() string { return Platform }

func (p *databricksProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{domain.ResourceWarehouse}
}

func (p *databricksProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	if t != domain.ResourceWarehouse {
		return nil, fmt.Errorf("resource type %q not supported by databricks provider", t)
	}

	warehouses, err := p.client.Warehouses.ListAll(ctx, dbxsql.ListWarehousesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	usage, err := p.metering.warehouseUsage(ctx, meteringDays)
	if err != nil {
		return nil, err
	}

	snaps := make([]domain.Snapshot, 0, len(warehouses))
	for _, wh := range warehouses {
		u := usage[wh.Id]
		snaps = append(snaps, domain.Snapshot{
			Type:     domain.ResourceWarehouse,
			ID:       wh.Id,
			Platform: Platform,
			State:    string(wh.State),
			Attributes: map[string]string{
				domain.AttrWarehouseSize: wh.ClusterSize,
				"name":                   wh.Name,
			},
			Metrics: map[string]float64{
				domain.MetricCreditsUsed:        u.dbus,
				domain.MetricHoursActive:        u.hours,
				domain.MetricAnalysisPeriodDays: meteringDays,
				domain.MetricAutoSuspendSeconds: float64(wh.AutoStopMins) * 60,
			},
			MonthlyCost: u.dbus * dbuPriceUSD / meteringDays * 30,
		})
	}
	return snaps, nil
}

func (p *databricksProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	switch action.Kind {
	case domain.RecommendSuspend:
		return p.stop(ctx, action.ResourceID)
	case domain.RecommendResize:
		size := action.Parameters["suggested_size"]
		if size == "" {
			return domain.ApplyResult{}, fmt.Errorf("resize action for %s has no suggested_size", action.ResourceID)
		}
		return p.edit(ctx, action.ResourceID, func(req *dbxsql.EditWarehouseRequest) {
			req.ClusterSize = size
		}, fmt.Sprintf("warehouse resized to %s", size))
	case domain.RecommendSetAutoSuspend:
		seconds, err := strconv.Atoi(action.Parameters["suggested_auto_suspend_sec"])
		if err != nil {
			return domain.ApplyResult{}, fmt.Errorf("set_auto_suspend action for %s has invalid seconds: %w", action.ResourceID, err)
		}
		minutes := (seconds + 59) / 60
		if minutes < 1 {
			minutes = 1
		}
		return p.edit(ctx, action.ResourceID, func(req *dbxsql.EditWarehouseRequest) {
			req.AutoStopMins = minutes
		}, fmt.Sprintf("auto stop set to %dm", minutes))
	case domain.RecommendDrop:
		if err := p.client.Warehouses.DeleteById(ctx, action.ResourceID); err != nil {
			return domain.ApplyResult{}, fmt.Errorf("failed to delete warehouse %s: %w", action.ResourceID, err)
		}
		return domain.ApplyResult{Detail: "warehouse deleted"}, nil
	default:
		return domain.ApplyResult{}, provider.ErrUnsupportedAction
	}
}

func (p *databricksProvider) stop(ctx context.Context, id string) (domain.ApplyResult, error) {
	wh, err := p.client.Warehouses.GetById(ctx, id)
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to get warehouse %s: %w", id, err)
	}
	if wh.State == dbxsql.StateStopped {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "warehouse already stopped"}, nil
	}

	if _, err := p.client.Warehouses.Stop(ctx, dbxsql.StopRequest{Id: id}); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to stop warehouse %s: %w", id, err)
	}
	return domain.ApplyResult{Detail: "warehouse stopped"}, nil
}

func (p *databricksProvider) edit(ctx context.Context, id string, mutate func(*dbxsql.EditWarehouseRequest), detail string) (domain.ApplyResult, error) {
	wh, err := p.client.Warehouses.GetById(ctx, id)
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to get warehouse %s: %w", id, err)
	}

	req := dbxsql.EditWarehouseRequest{
		Id:           id,
		Name:         wh.Name,
		ClusterSize:  wh.ClusterSize,
		AutoStopMins: wh.AutoStopMins,
	}
	mutate(&req)

	if _, err := p.client.Warehouses.Edit(ctx, req); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to edit warehouse %s: %w", id, err)
	}
	return domain.ApplyResult{Detail: detail}, nil
}

func (p *databricksProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	wh, err := p.client.Warehouses.GetById(ctx, action.ResourceID)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to get warehouse %s: %w", action.ResourceID, err)
	}

	artifact, err := json.Marshal(wh)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to serialize warehouse config: %w", err)
	}
	return domain.BackupRef{
		ID:       fmt.Sprintf("config-%s", action.ResourceID),
		Kind:     "description",
		Artifact: artifact,
	}, nil
}

package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/config"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

const Platform = "azure"

type azureProvider struct {
	subscriptionID string
	disks          *armcompute.DisksClient
	snapshots      *armcompute.SnapshotsClient
	costs          *costClient
}

// ProviderFactory builds an Azure provider from the [azure] profile
// section. Credentials resolve through the default chain (env, managed
// identity, CLI).
func ProviderFactory(_ context.Context, profilePath string) (provider.Provider, error) {
	registry, err := config.NewRegistry(profilePath)
	if err != nil {
		return nil, err
	}
	section, err := registry.Section(Platform)
	if err != nil {
		return nil, err
	}
	subscriptionID := section["subscription_id"]
	if subscriptionID == "" {
		return nil, fmt.Errorf("azure profile section has no subscription_id")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve azure credentials: %w", err)
	}

	disks, err := armcompute.NewDisksClient(subscriptionID, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create disks client: %w", err)
	}
	snapshots, err := armcompute.NewSnapshotsClient(subscriptionID, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshots client: %w", err)
	}
	costs, err := newCostClient(subscriptionID, credential)
	if err != nil {
		return nil, err
	}

	return &azureProvider{
		subscriptionID: subscriptionID,
		disks:          disks,
		snapshots:      snapshots,
		costs:          costs,
	}, nil
}

func (p *azureProvider) Platform() string { return Platform }

func (p *azureProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{domain.ResourceBlockVolume}
}

func (p *azureProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	if t != domain.ResourceBlockVolume {
		return nil, fmt.Errorf("resource type %q not supported by azure provider", t)
	}

	var snaps []domain.Snapshot
	pager := p.disks.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list disks: %w", err)
		}
		for _, disk := range page.Value {
			if disk.Name == nil || disk.Properties == nil {
				continue
			}

			state := ""
			if disk.Properties.DiskState != nil {
				if *disk.Properties.DiskState == armcompute.DiskStateUnattached {
					state = "available"
				} else {
					state = string(*disk.Properties.DiskState)
				}
			}

			// Deallocation history is not on the disk resource; unattached
			// age falls back to disk age.
			daysUnattached := 0.0
			if state == "available" && disk.Properties.TimeCreated != nil {
				daysUnattached = time.Since(*disk.Properties.TimeCreated).Hours() / 24
				if daysUnattached > 365 {
					daysUnattached = 365
				}
			}

			sizeGB := 0.0
			if disk.Properties.DiskSizeGB != nil {
				sizeGB = float64(*disk.Properties.DiskSizeGB)
			}

			diskID := ""
			if disk.ID != nil {
				diskID = *disk.ID
			}
			attrs := map[string]string{
				domain.AttrResourceGroup: resourceGroupFromID(diskID),
			}
			if disk.SKU != nil && disk.SKU.Name != nil {
				attrs[domain.AttrVolumeType] = string(*disk.SKU.Name)
			}
			if disk.Location != nil {
				attrs[domain.AttrRegion] = *disk.Location
			}

			snaps = append(snaps, domain.Snapshot{
				Type:       domain.ResourceBlockVolume,
				ID:         *disk.Name,
				Platform:   Platform,
				State:      state,
				Attributes: attrs,
				Metrics: map[string]float64{
					domain.MetricSizeGB:         sizeGB,
					domain.MetricDaysUnattached: daysUnattached,
				},
			})
		}
	}
	return snaps, nil
}

// AccountMonthlySpend returns last month's cost per service, used by the
// status command.
func (p *azureProvider) AccountMonthlySpend(ctx context.Context) (map[string]float64, error) {
	return p.costs.monthlySpendByService(ctx)
}

func (p *azureProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	if action.Kind != domain.RecommendDelete || action.ResourceType != domain.ResourceBlockVolume {
		return domain.ApplyResult{}, provider.ErrUnsupportedAction
	}

	resourceGroup := action.Parameters[domain.AttrResourceGroup]
	if resourceGroup == "" {
		return domain.ApplyResult{}, fmt.Errorf("delete action for %s has no resource_group", action.ResourceID)
	}

	poller, err := p.disks.BeginDelete(ctx, resourceGroup, action.ResourceID, nil)
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to delete disk %s: %w", action.ResourceID, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("disk %s deletion did not finish: %w", action.ResourceID, err)
	}
	return domain.ApplyResult{Detail: "disk deleted"}, nil
}

func (p *azureProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	if action.ResourceType != domain.ResourceBlockVolume {
		return domain.BackupRef{}, fmt.Errorf("no backup strategy for %s on azure", action.ResourceType)
	}

	resourceGroup := action.Parameters[domain.AttrResourceGroup]
	if resourceGroup == "" {
		return domain.BackupRef{}, fmt.Errorf("backup for %s has no resource_group", action.ResourceID)
	}

	disk, err := p.disks.Get(ctx, resourceGroup, action.ResourceID, nil)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to get disk %s: %w", action.ResourceID, err)
	}

	snapshotName := fmt.Sprintf("%s-pre-%s-%d", action.ResourceID, action.Kind, time.Now().Unix())
	poller, err := p.snapshots.BeginCreateOrUpdate(ctx, resourceGroup, snapshotName, armcompute.Snapshot{
		Location: disk.Location,
		Properties: &armcompute.SnapshotProperties{
			CreationData: &armcompute.CreationData{
				CreateOption:     to.Ptr(armcompute.DiskCreateOptionCopy),
				SourceResourceID: disk.ID,
			},
		},
	}, nil)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to snapshot disk %s: %w", action.ResourceID, err)
	}
	result, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("snapshot of %s did not finish: %w", action.ResourceID, err)
	}

	artifact, err := json.Marshal(disk.Disk)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("failed to serialize disk description: %w", err)
	}
	location := ""
	if result.ID != nil {
		location = *result.ID
	}
	return domain.BackupRef{
		ID:       snapshotName,
		Kind:     "snapshot",
		Location: location,
		Artifact: artifact,
	}, nil
}

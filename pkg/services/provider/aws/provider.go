package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/config"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

const Platform = "aws"

type awsProvider struct {
	region  string
	ec2     *ec2.Client
	cw      *cloudwatch.Client
	s3      *s3.Client
	ce      *costexplorer.Client
	metrics *metricsCollector
}

// ProviderFactory builds an AWS provider from the [aws] profile section.
func ProviderFactory(ctx context.Context, profilePath string) (provider.Provider, error) {
	registry, err := config.NewRegistry(profilePath)
	if err != nil {
		return nil, err
	}
	section, err := registry.Section(Platform)
	if err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region := section["region"]; region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile := section["profile"]; profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewProvider(cfg), nil
}

func NewProvider(cfg awssdk.Config) provider.Provider {
	cw := cloudwatch.NewFromConfig(cfg)
	return &awsProvider{
		region:  cfg.Region,
		ec2:     ec2.NewFromConfig(cfg),
		cw:      cw,
		s3:      s3.NewFromConfig(cfg),
		ce:      costexplorer.NewFromConfig(cfg),
		metrics: newMetricsCollector(cw),
	}
}

func (p *awsProvider) Platform() string { return Platform }

func (p *awsProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{
		domain.ResourceCompute,
		domain.ResourceBlockVolume,
		domain.ResourceObjectStore,
	}
}

func (p *awsProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	switch t {
	case domain.ResourceCompute:
		return p.listInstances(ctx)
	case domain.ResourceBlockVolume:
		return p.listVolumes(ctx)
	case domain.ResourceObjectStore:
		return p.listBuckets(ctx)
	default:
		return nil, fmt.Errorf("resource type %q not supported by aws provider", t)
	}
}

func (p *awsProvider) listInstances(ctx context.Context) ([]domain.Snapshot, error) {
	paginator := ec2.NewDescribeInstancesPaginator(p.ec2, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("instance-state-name"), Values: []string{"running"}},
		},
	})

	var snaps []domain.Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe EC2 instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				instanceID := awssdk.ToString(instance.InstanceId)
				instanceType := string(instance.InstanceType)

				daysRunning := 0.0
				if instance.LaunchTime != nil {
					daysRunning = time.Since(*instance.LaunchTime).Hours() / 24
				}

				usage, err := p.metrics.instanceUsage(ctx, instanceID)
				if err != nil {
					return nil, err
				}

				snap := domain.Snapshot{
					Type:     domain.ResourceCompute,
					ID:       instanceID,
					Platform: Platform,
					State:    string(instance.State.Name),
					Attributes: map[string]string{
						domain.AttrInstanceType: instanceType,
						domain.AttrRegion:       p.region,
					},
					Metrics: map[string]float64{
						domain.MetricAvgCPUPercent:   usage.cpuPercent,
						domain.MetricAvgNetworkInBps: usage.networkInBps,
						domain.MetricDaysRunning:     daysRunning,
						domain.MetricHourlyCost:      instanceHourlyPrice(instanceType),
					},
				}
				snaps = append(snaps, snap)
			}
		}
	}
	return snaps, nil
}

func (p *awsProvider) listVolumes(ctx context.Context) ([]domain.Snapshot, error) {
	paginator := ec2.NewDescribeVolumesPaginator(p.ec2, &ec2.DescribeVolumesInput{})

	var snaps []domain.Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe EBS volumes: %w", err)
		}
		for _, volume := range page.Volumes {
			volumeID := awssdk.ToString(volume.VolumeId)

			// Attachment history is not exposed, so the unattached age is
			// approximated by volume age once the volume sits in "available".
			daysUnattached := 0.0
			if len(volume.Attachments) == 0 && volume.State == ec2types.VolumeStateAvailable {
				if volume.CreateTime != nil {
					daysUnattached = time.Since(*volume.CreateTime).Hours() / 24
					if daysUnattached > 365 {
						daysUnattached = 365
					}
				}
			}

			snap := domain.Snapshot{
				Type:     domain.ResourceBlockVolume,
				ID:       volumeID,
				Platform: Platform,
				State:    string(volume.State),
				Attributes: map[string]string{
					domain.AttrVolumeType: string(volume.VolumeType),
					domain.AttrRegion:     p.region,
				},
				Metrics: map[string]float64{
					domain.MetricSizeGB:         float64(awssdk.ToInt32(volume.Size)),
					domain.MetricDaysUnattached: daysUnattached,
				},
			}
			if iops := awssdk.ToInt32(volume.Iops); iops > 0 &&
				(volume.VolumeType == ec2types.VolumeTypeIo1 || volume.VolumeType == ec2types.VolumeTypeIo2) {
				snap.Metrics[domain.MetricProvisionedIOPS] = float64(iops)
				avgIOPS, err := p.metrics.volumeIOPS(ctx, volumeID)
				if err != nil {
					return nil, err
				}
				snap.Metrics[domain.MetricAvgIOPS] = avgIOPS
			}
			snaps = append(snaps, snap)
		}
	}
	return snaps, nil
}

func (p *awsProvider) listBuckets(ctx context.Context) ([]domain.Snapshot, error) {
	resp, err := p.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 buckets: %w", err)
	}

	var snaps []domain.Snapshot
	for _, bucket := range resp.Buckets {
		name := awssdk.ToString(bucket.Name)

		sizeGB, err := p.metrics.bucketSizeGB(ctx, name)
		if err != nil {
			return nil, err
		}

		// Per-object access times need S3 inventory; bucket age is the
		// stand-in the exporter has always used.
		daysSinceAccess := 0.0
		if bucket.CreationDate != nil {
			daysSinceAccess = time.Since(*bucket.CreationDate).Hours() / 24
			if daysSinceAccess > 365 {
				daysSinceAccess = 365
			}
		}

		uploads, uploadsSizeGB, err := p.incompleteUploads(ctx, name)
		if err != nil {
			return nil, err
		}

		snaps = append(snaps, domain.Snapshot{
			Type:     domain.ResourceObjectStore,
			ID:       name,
			Platform: Platform,
			Attributes: map[string]string{
				domain.AttrStorageClass: "STANDARD",
			},
			Metrics: map[string]float64{
				domain.MetricSizeGB:            sizeGB,
				domain.MetricDaysSinceAccess:   daysSinceAccess,
				domain.MetricIncompleteUploads: uploads,
				domain.MetricIncompleteSizeGB:  uploadsSizeGB,
			},
		})
	}
	return snaps, nil
}

func (p *awsProvider) incompleteUploads(ctx context.Context, bucket string) (float64, float64, error) {
	resp, err := p.s3.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
		Bucket: awssdk.String(bucket),
	})
	if err != nil {
		// Cross-region and permission errors on individual buckets should
		// not sink the whole listing.
		return 0, 0, nil
	}
	count := float64(len(resp.Uploads))
	// Upload part sizes require per-upload ListParts calls; assume one
	// standard 100MB part per stale upload as a floor.
	return count, count * 0.1, nil
}

// AccountMonthlySpend returns last month's unblended cost per service, used
// by the status command.
func (p *awsProvider) AccountMonthlySpend(ctx context.Context) (map[string]float64, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0).Format("2006-01-02")
	end := now.Format("2006-01-02")

	resp, err := p.ce.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: awssdk.String(start),
			End:   awssdk.String(end),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String("SERVICE")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query cost explorer: %w", err)
	}

	spend := make(map[string]float64)
	for _, result := range resp.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				continue
			}
			spend[group.Keys[0]] += amount
		}
	}
	return spend, nil
}

func (p *awsProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	switch action.Kind {
	case domain.RecommendTerminate:
		return p.terminateInstance(ctx, action.ResourceID)
	case domain.RecommendStop:
		return p.stopInstance(ctx, action.ResourceID)
	case domain.RecommendResize:
		switch action.ResourceType {
		case domain.ResourceCompute:
			return p.resizeInstance(ctx, action)
		case domain.ResourceBlockVolume:
			return p.resizeVolumeIOPS(ctx, action)
		}
		return domain.ApplyResult{}, provider.ErrUnsupportedAction
	case domain.RecommendDelete:
		return p.deleteVolume(ctx, action.ResourceID)
	case domain.RecommendGlacier:
		return p.transitionToGlacier(ctx, action.ResourceID)
	case domain.RecommendAbortMultipart:
		return p.abortIncompleteUploads(ctx, action.ResourceID)
	default:
		return domain.ApplyResult{}, provider.ErrUnsupportedAction
	}
}

func (p *awsProvider) terminateInstance(ctx context.Context, id string) (domain.ApplyResult, error) {
	_, err := p.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{id},
	})
	if isAlreadyGone(err) {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "instance not found"}, nil
	}
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to terminate %s: %w", id, err)
	}
	return domain.ApplyResult{Detail: "instance terminated"}, nil
}

func (p *awsProvider) stopInstance(ctx context.Context, id string) (domain.ApplyResult, error) {
	_, err := p.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{id},
	})
	if isWrongState(err) {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "instance not running"}, nil
	}
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to stop %s: %w", id, err)
	}
	return domain.ApplyResult{Detail: "instance stopped"}, nil
}

func (p *awsProvider) resizeInstance(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	target := action.Parameters["suggested_instance_type"]
	if target == "" {
		return domain.ApplyResult{}, fmt.Errorf("resize action for %s has no suggested_instance_type", action.ResourceID)
	}

	// Stop / modify / start cycle: instance type changes need the instance
	// stopped.
	if _, err := p.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{action.ResourceID},
	}); err != nil && !isWrongState(err) {
		return domain.ApplyResult{}, fmt.Errorf("failed to stop %s for resize: %w", action.ResourceID, err)
	}

	waiter := ec2.NewInstanceStoppedWaiter(p.ec2)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{action.ResourceID},
	}, 10*time.Minute); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("instance %s did not stop: %w", action.ResourceID, err)
	}

	if _, err := p.ec2.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId:   awssdk.String(action.ResourceID),
		InstanceType: &ec2types.AttributeValue{Value: awssdk.String(target)},
	}); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to modify %s: %w", action.ResourceID, err)
	}

	if _, err := p.ec2.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{action.ResourceID},
	}); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to restart %s after resize: %w", action.ResourceID, err)
	}
	return domain.ApplyResult{Detail: fmt.Sprintf("resized to %s", target)}, nil
}

func (p *awsProvider) resizeVolumeIOPS(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	suggested := action.Parameters["suggested_iops"]
	iops, err := strconv.ParseFloat(suggested, 64)
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("resize action for %s has invalid suggested_iops %q", action.ResourceID, suggested)
	}
	if _, err := p.ec2.ModifyVolume(ctx, &ec2.ModifyVolumeInput{
		VolumeId: awssdk.String(action.ResourceID),
		Iops:     awssdk.Int32(int32(iops)),
	}); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to modify volume %s: %w", action.ResourceID, err)
	}
	return domain.ApplyResult{Detail: fmt.Sprintf("provisioned IOPS reduced to %d", int32(iops))}, nil
}

func (p *awsProvider) deleteVolume(ctx context.Context, id string) (domain.ApplyResult, error) {
	_, err := p.ec2.DeleteVolume(ctx, &ec2.DeleteVolumeInput{
		VolumeId: awssdk.String(id),
	})
	if isAlreadyGone(err) {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "volume not found"}, nil
	}
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to delete volume %s: %w", id, err)
	}
	return domain.ApplyResult{Detail: "volume deleted"}, nil
}

func (p *awsProvider) transitionToGlacier(ctx context.Context, bucket string) (domain.ApplyResult, error) {
	_, err := p.s3.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket: awssdk.String(bucket),
		LifecycleConfiguration: &s3types.BucketLifecycleConfiguration{
			Rules: []s3types.LifecycleRule{
				{
					ID:     awssdk.String("zombie-exorcist-glacier"),
					Status: s3types.ExpirationStatusEnabled,
					Filter: &s3types.LifecycleRuleFilterMemberPrefix{Value: ""},
					Transitions: []s3types.Transition{
						{Days: awssdk.Int32(0), StorageClass: s3types.TransitionStorageClassGlacier},
					},
				},
			},
		},
	})
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to configure lifecycle on %s: %w", bucket, err)
	}
	return domain.ApplyResult{Detail: "glacier transition rule installed"}, nil
}

func (p *awsProvider) abortIncompleteUploads(ctx context.Context, bucket string) (domain.ApplyResult, error) {
	resp, err := p.s3.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
		Bucket: awssdk.String(bucket),
	})
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("failed to list uploads in %s: %w", bucket, err)
	}
	if len(resp.Uploads) == 0 {
		return domain.ApplyResult{AlreadyInTargetState: true, Detail: "no incomplete uploads"}, nil
	}
	for _, upload := range resp.Uploads {
		if _, err := p.s3.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   awssdk.String(bucket),
			Key:      upload.Key,
			UploadId: upload.UploadId,
		}); err != nil {
			return domain.ApplyResult{}, fmt.Errorf("failed to abort upload %s in %s: %w",
				awssdk.ToString(upload.UploadId), bucket, err)
		}
	}
	return domain.ApplyResult{Detail: fmt.Sprintf("aborted %d incomplete uploads", len(resp.Uploads))}, nil
}

func (p *awsProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	switch action.ResourceType {
	case domain.ResourceBlockVolume:
		resp, err := p.ec2.CreateSnapshot(ctx, &ec2.CreateSnapshotInput{
			VolumeId:    awssdk.String(action.ResourceID),
			Description: awssdk.String(fmt.Sprintf("pre-%s backup of %s", action.Kind, action.ResourceID)),
		})
		if err != nil {
			return domain.BackupRef{}, fmt.Errorf("failed to snapshot volume %s: %w", action.ResourceID, err)
		}
		return domain.BackupRef{
			ID:       awssdk.ToString(resp.SnapshotId),
			Kind:     "snapshot",
			Location: fmt.Sprintf("ec2:%s:snapshot/%s", p.region, awssdk.ToString(resp.SnapshotId)),
		}, nil
	case domain.ResourceCompute:
		resp, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			InstanceIds: []string{action.ResourceID},
		})
		if err != nil {
			return domain.BackupRef{}, fmt.Errorf("failed to describe instance %s: %w", action.ResourceID, err)
		}
		artifact, err := json.Marshal(resp.Reservations)
		if err != nil {
			return domain.BackupRef{}, fmt.Errorf("failed to serialize instance description: %w", err)
		}
		return domain.BackupRef{
			ID:       fmt.Sprintf("describe-%s", action.ResourceID),
			Kind:     "description",
			Artifact: artifact,
		}, nil
	default:
		return domain.BackupRef{}, fmt.Errorf("no backup strategy for %s on aws", action.ResourceType)
	}
}

// Smithy error codes that mean the resource is already gone.
func isAlreadyGone(err error) bool {
	var apiErr smithy.APIError
	if err == nil || !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "InvalidInstanceID.NotFound", "InvalidVolume.NotFound":
		return true
	}
	return false
}

// Smithy error codes that mean the resource already left the source state.
func isWrongState(err error) bool {
	var apiErr smithy.APIError
	if err == nil || !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "IncorrectInstanceState"
}

package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	metricLookback = 7 * 24 * time.Hour
	metricPeriod   = int32(3600)
)

// metricsCollector pulls CloudWatch utilization statistics for the
// snapshots the provider builds.
type metricsCollector struct {
	cw *cloudwatch.Client
}

func newMetricsCollector(cw *cloudwatch.Client) *metricsCollector {
	return &metricsCollector{cw: cw}
}

type instanceUsage struct {
	cpuPercent   float64
	networkInBps float64
}

func (c *metricsCollector) instanceUsage(ctx context.Context, instanceID string) (instanceUsage, error) {
	dims := []cwtypes.Dimension{
		{Name: awssdk.String("InstanceId"), Value: awssdk.String(instanceID)},
	}

	cpu, err := c.average(ctx, "AWS/EC2", "CPUUtilization", dims)
	if err != nil {
		return instanceUsage{}, fmt.Errorf("failed to fetch CPU metrics for %s: %w", instanceID, err)
	}
	networkIn, err := c.average(ctx, "AWS/EC2", "NetworkIn", dims)
	if err != nil {
		return instanceUsage{}, fmt.Errorf("failed to fetch network metrics for %s: %w", instanceID, err)
	}

	// NetworkIn datapoints are bytes per period; normalize to bytes per
	// second.
	return instanceUsage{
		cpuPercent:   cpu,
		networkInBps: networkIn / float64(metricPeriod),
	}, nil
}

func (c *metricsCollector) volumeIOPS(ctx context.Context, volumeID string) (float64, error) {
	dims := []cwtypes.Dimension{
		{Name: awssdk.String("VolumeId"), Value: awssdk.String(volumeID)},
	}

	readOps, err := c.average(ctx, "AWS/EBS", "VolumeReadOps", dims)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch read metrics for %s: %w", volumeID, err)
	}
	writeOps, err := c.average(ctx, "AWS/EBS", "VolumeWriteOps", dims)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch write metrics for %s: %w", volumeID, err)
	}
	return (readOps + writeOps) / float64(metricPeriod), nil
}

func (c *metricsCollector) bucketSizeGB(ctx context.Context, bucket string) (float64, error) {
	bytes, err := c.average(ctx, "AWS/S3", "BucketSizeBytes", []cwtypes.Dimension{
		{Name: awssdk.String("BucketName"), Value: awssdk.String(bucket)},
		{Name: awssdk.String("StorageType"), Value: awssdk.String("StandardStorage")},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch size metrics for %s: %w", bucket, err)
	}
	return bytes / (1024 * 1024 * 1024), nil
}

func (c *metricsCollector) average(ctx context.Context, namespace, metric string, dims []cwtypes.Dimension) (float64, error) {
	end := time.Now().UTC()
	start := end.Add(-metricLookback)

	resp, err := c.cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  awssdk.String(namespace),
		MetricName: awssdk.String(metric),
		Dimensions: dims,
		StartTime:  awssdk.Time(start),
		EndTime:    awssdk.Time(end),
		Period:     awssdk.Int32(metricPeriod),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Datapoints) == 0 {
		return 0, nil
	}

	var sum float64
	for _, dp := range resp.Datapoints {
		sum += awssdk.ToFloat64(dp.Average)
	}
	return sum / float64(len(resp.Datapoints)), nil
}

// Package file loads resource snapshots from exported usage dumps (JSON or
// CSV) instead of live provider APIs. It is a read-only snapshot source:
// mutations against file-derived findings are resolved to the live provider
// for the finding's platform at remediation time.
package file

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

// Load parses one usage dump into snapshots. JSON files may contain any mix
// of resource sections; CSV files hold one resource type, inferred from the
// file name.
func Load(path string) ([]domain.Snapshot, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file format %q", filepath.Ext(path))
	}
}

type document struct {
	EC2       []record `json:"ec2_instances"`
	EC2Alt    []record `json:"EC2"`
	EBS       []record `json:"ebs_volumes"`
	EBSAlt    []record `json:"EBS"`
	Snowflake []record `json:"snowflake_warehouses"`
	SnowAlt   []record `json:"snowflake"`
	S3        []record `json:"s3_buckets"`
	S3Alt     []record `json:"S3"`
}

type record map[string]any

func loadJSON(path string) ([]domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var snaps []domain.Snapshot
	for _, r := range append(doc.EC2, doc.EC2Alt...) {
		snaps = append(snaps, computeSnapshot(r))
	}
	for _, r := range append(doc.EBS, doc.EBSAlt...) {
		snaps = append(snaps, volumeSnapshot(r))
	}
	for _, r := range append(doc.Snowflake, doc.SnowAlt...) {
		snaps = append(snaps, warehouseSnapshot(r))
	}
	for _, r := range append(doc.S3, doc.S3Alt...) {
		snaps = append(snaps, bucketSnapshot(r))
	}
	return snaps, nil
}

func loadCSV(path string) ([]domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := make(record, len(header))
		for i, col := range header {
			if i < len(row) {
				r[col] = row[i]
			}
		}
		records = append(records, r)
	}

	build := builderForFilename(filepath.Base(path))
	snaps := make([]domain.Snapshot, 0, len(records))
	for _, r := range records {
		snaps = append(snaps, build(r))
	}
	return snaps, nil
}

func builderForFilename(name string) func(record) domain.Snapshot {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "ebs"), strings.Contains(lower, "volume"):
		return volumeSnapshot
	case strings.Contains(lower, "snowflake"), strings.Contains(lower, "warehouse"):
		return warehouseSnapshot
	case strings.Contains(lower, "s3"), strings.Contains(lower, "bucket"):
		return bucketSnapshot
	default:
		return computeSnapshot
	}
}

func computeSnapshot(r record) domain.Snapshot {
	snap := domain.Snapshot{
		Type:       domain.ResourceCompute,
		ID:         r.str("InstanceId", "instance_id"),
		Platform:   "aws",
		State:      r.str("State", "state"),
		Attributes: map[string]string{},
		Metrics:    map[string]float64{},
	}
	if t := r.str("InstanceType", "instance_type"); t != "" {
		snap.Attributes[domain.AttrInstanceType] = t
	}

	// The exporter reports CPU as a 0..1 fraction under AverageCPU; the
	// snapshot metric is a percentage.
	if cpu, ok := r.num("avg_cpu_percent"); ok {
		snap.Metrics[domain.MetricAvgCPUPercent] = cpu
	} else if cpu, ok := r.num("AverageCPU", "avg_cpu"); ok {
		snap.Metrics[domain.MetricAvgCPUPercent] = cpu * 100
	}
	r.metric(&snap, domain.MetricAvgNetworkInBps, "AverageNetworkIn", "avg_network_in", "avg_network_in_bps")
	r.metric(&snap, domain.MetricDaysRunning, "DaysRunning", "days_running")
	r.metric(&snap, domain.MetricHourlyCost, "HourlyCost", "hourly_cost")
	return snap
}

func volumeSnapshot(r record) domain.Snapshot {
	snap := domain.Snapshot{
		Type:       domain.ResourceBlockVolume,
		ID:         r.str("VolumeId", "volume_id"),
		Platform:   "aws",
		State:      r.str("State", "state"),
		Attributes: map[string]string{},
		Metrics:    map[string]float64{},
	}
	if t := r.str("VolumeType", "volume_type"); t != "" {
		snap.Attributes[domain.AttrVolumeType] = t
	}
	r.metric(&snap, domain.MetricSizeGB, "Size", "size_gb")
	r.metric(&snap, domain.MetricDaysUnattached, "DaysUnattached", "days_unattached")
	r.metric(&snap, domain.MetricProvisionedIOPS, "IOPS", "provisioned_iops")
	r.metric(&snap, domain.MetricAvgIOPS, "AverageIOPS", "avg_iops")
	return snap
}

func warehouseSnapshot(r record) domain.Snapshot {
	snap := domain.Snapshot{
		Type:       domain.ResourceWarehouse,
		ID:         r.str("name", "warehouse_name"),
		Platform:   "snowflake",
		State:      r.str("state", "status"),
		Attributes: map[string]string{},
		Metrics:    map[string]float64{},
	}
	if s := r.str("size", "warehouse_size"); s != "" {
		snap.Attributes[domain.AttrWarehouseSize] = s
	}
	r.metric(&snap, domain.MetricCreditsUsed, "credits_used", "total_credits")
	r.metric(&snap, domain.MetricQueryCount, "query_count", "total_queries")
	r.metric(&snap, domain.MetricHoursActive, "hours_active", "active_hours")
	r.metric(&snap, domain.MetricAnalysisPeriodDays, "analysis_period_days")
	if minutes, ok := r.num("auto_suspend_minutes", "auto_suspend"); ok {
		snap.Metrics[domain.MetricAutoSuspendSeconds] = minutes * 60
	}
	if snap.Metrics[domain.MetricAnalysisPeriodDays] == 0 {
		snap.Metrics[domain.MetricAnalysisPeriodDays] = 30
	}
	return snap
}

func bucketSnapshot(r record) domain.Snapshot {
	snap := domain.Snapshot{
		Type:       domain.ResourceObjectStore,
		ID:         r.str("BucketName", "bucket_name"),
		Platform:   "aws",
		Attributes: map[string]string{},
		Metrics:    map[string]float64{},
	}
	class := r.str("StorageClass", "storage_class")
	if class == "" {
		class = "STANDARD"
	}
	snap.Attributes[domain.AttrStorageClass] = class
	r.metric(&snap, domain.MetricSizeGB, "SizeGB", "size_gb")
	r.metric(&snap, domain.MetricDaysSinceAccess, "DaysSinceLastAccess", "days_since_access", "days_since_last_access")
	r.metric(&snap, domain.MetricIncompleteUploads, "IncompleteUploads", "incomplete_uploads")
	r.metric(&snap, domain.MetricIncompleteSizeGB, "IncompleteUploadSizeGB", "incomplete_size_gb")
	return snap
}

func (r record) str(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func (r record) num(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if n == "" {
				continue
			}
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func (r record) metric(snap *domain.Snapshot, name string, keys ...string) {
	if v, ok := r.num(keys...); ok {
		snap.Metrics[name] = v
	}
}

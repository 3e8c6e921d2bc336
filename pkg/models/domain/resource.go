package domain

// ResourceType identifies the class of cloud resource a snapshot describes.
type ResourceType string

const (
	ResourceCompute     ResourceType = "compute"
	ResourceBlockVolume ResourceType = "block_volume"
	ResourceObjectStore ResourceType = "object_store"
	ResourceWarehouse   ResourceType = "warehouse"
)

// Metric names shared between providers and the classifier. Each resource type
// has a required subset; a snapshot missing one of its required metrics is
// skipped with an insufficient-data outcome rather than classified.
const (
	MetricAvgCPUPercent      = "avg_cpu_percent"
	MetricAvgNetworkInBps    = "avg_network_in_bps"
	MetricDaysRunning        = "days_running"
	MetricHourlyCost         = "hourly_cost"
	MetricDaysUnattached     = "days_unattached"
	MetricSizeGB             = "size_gb"
	MetricProvisionedIOPS    = "provisioned_iops"
	MetricAvgIOPS            = "avg_iops"
	MetricDaysSinceAccess    = "days_since_last_access"
	MetricIncompleteUploads  = "incomplete_uploads"
	MetricIncompleteSizeGB   = "incomplete_upload_size_gb"
	MetricCreditsUsed        = "credits_used"
	MetricQueryCount         = "query_count"
	MetricHoursActive        = "hours_active"
	MetricAnalysisPeriodDays = "analysis_period_days"
	MetricAutoSuspendSeconds = "auto_suspend_seconds"
)

// Attribute names carried alongside metrics for non-numeric facts.
const (
	AttrInstanceType  = "instance_type"
	AttrVolumeType    = "volume_type"
	AttrWarehouseSize = "warehouse_size"
	AttrStorageClass  = "storage_class"
	AttrRegion        = "region"
	AttrResourceGroup = "resource_group"
)

// Snapshot is a normalized, provider-agnostic view of one resource's usage
// facts at analysis time. It is created fresh each run and never mutated.
type Snapshot struct {
	Type        ResourceType
	ID          string
	Platform    string // aws, snowflake, databricks, azure
	State       string // provider lifecycle state: running, stopped, available, ...
	Attributes  map[string]string
	Metrics     map[string]float64
	MonthlyCost float64 // USD per month, zero when the provider could not derive it
}

// Metric returns the named metric and whether it was reported by the provider.
func (s Snapshot) Metric(name string) (float64, bool) {
	v, ok := s.Metrics[name]
	return v, ok
}

// Attr returns the named attribute, or empty string when absent.
func (s Snapshot) Attr(name string) string {
	return s.Attributes[name]
}

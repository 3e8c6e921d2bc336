package classify

import (
	"strconv"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

func (c *Classifier) classifyBlockVolume(snap domain.Snapshot) (*domain.Finding, error) {
	metrics, err := requireMetrics(snap, domain.MetricSizeGB)
	if err != nil {
		return nil, err
	}

	sizeGB := metrics[domain.MetricSizeGB]
	volumeType := snap.Attr(domain.AttrVolumeType)

	monthlyCost := snap.MonthlyCost
	if monthlyCost == 0 {
		monthlyCost = sizeGB * volumeGBMonthRate(volumeType)
	}

	// Unattached volume past the grace period: full cost is waste.
	daysUnattached, _ := snap.Metric(domain.MetricDaysUnattached)
	if snap.State == "available" && daysUnattached > c.settings.UnattachedDays {
		return newFinding(snap,
			"unattached volume past grace period",
			domain.RecommendDelete,
			monthlyCost, monthlyCost,
			map[string]string{
				domain.AttrVolumeType: volumeType,
				"size_gb":             strconv.FormatFloat(sizeGB, 'f', 0, 64),
				"days_unattached":     strconv.FormatFloat(daysUnattached, 'f', 0, 64),
			}), nil
	}

	// Over-provisioned IOPS on provisioned-IOPS volume types.
	provisioned, _ := snap.Metric(domain.MetricProvisionedIOPS)
	avgIOPS, hasAvg := snap.Metric(domain.MetricAvgIOPS)
	if provisioned > 0 && hasAvg && avgIOPS/provisioned < c.settings.IOPSUtilization {
		suggested := avgIOPS * 1.2
		return newFinding(snap,
			"over-provisioned IOPS",
			domain.RecommendResize,
			monthlyCost*0.6, monthlyCost,
			map[string]string{
				domain.AttrVolumeType: volumeType,
				"provisioned_iops":    strconv.FormatFloat(provisioned, 'f', 0, 64),
				"avg_iops":            strconv.FormatFloat(avgIOPS, 'f', 0, 64),
				"suggested_iops":      strconv.FormatFloat(suggested, 'f', 0, 64),
			}), nil
	}

	return nil, nil
}

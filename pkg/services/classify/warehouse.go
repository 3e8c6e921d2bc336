package classify

import (
	"fmt"
	"strconv"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

func (c *Classifier) classifyWarehouse(snap domain.Snapshot) (*domain.Finding, error) {
	metrics, err := requireMetrics(snap,
		domain.MetricHoursActive, domain.MetricCreditsUsed, domain.MetricAnalysisPeriodDays)
	if err != nil {
		return nil, err
	}

	periodDays := metrics[domain.MetricAnalysisPeriodDays]
	if periodDays <= 0 {
		return nil, fmt.Errorf("%w: %s has non-positive analysis period",
			ErrInsufficientData, snap.ID)
	}

	hoursActive := metrics[domain.MetricHoursActive]
	creditsUsed := metrics[domain.MetricCreditsUsed]
	size := snap.Attr(domain.AttrWarehouseSize)

	monthlyCost := snap.MonthlyCost
	if monthlyCost == 0 {
		monthlyCost = creditsUsed * c.settings.CreditPriceUSD / periodDays * 30
	}

	// Idle: barely used over the whole window. Threshold is specified per
	// 30 days and scaled to the actual analysis period.
	idleThreshold := c.settings.IdleHoursPer30Days * periodDays / 30
	if hoursActive < idleThreshold {
		queryCount, _ := snap.Metric(domain.MetricQueryCount)
		return newFinding(snap,
			"idle warehouse - minimal activity in period",
			domain.RecommendSuspend,
			monthlyCost*0.9, monthlyCost,
			map[string]string{
				domain.AttrWarehouseSize: size,
				"hours_active":           strconv.FormatFloat(hoursActive, 'f', 1, 64),
				"query_count":            strconv.FormatFloat(queryCount, 'f', 0, 64),
				"analysis_period_days":   strconv.FormatFloat(periodDays, 'f', 0, 64),
			}), nil
	}

	// Oversized: credit burn per active hour far below the size's capacity.
	if hoursActive > 0 {
		avgCreditRate := creditsUsed / hoursActive
		capacity := warehouseCreditRate(size)
		if avgCreditRate/capacity < c.settings.CreditUtilization {
			if suggested, ok := warehouseSizeDown(size, 2); ok {
				savings := monthlyCost * (1 - warehouseCreditRate(suggested)/capacity)
				return newFinding(snap,
					"oversized warehouse - low credit utilization",
					domain.RecommendResize,
					savings, monthlyCost,
					map[string]string{
						"current_size":        size,
						"suggested_size":      suggested,
						"utilization_percent": strconv.FormatFloat(avgCreditRate/capacity*100, 'f', 1, 64),
					}), nil
			}
		}
	}

	// No auto-suspend: warehouse keeps burning credits after the last query.
	autoSuspend, hasAutoSuspend := snap.Metric(domain.MetricAutoSuspendSeconds)
	if !hasAutoSuspend || autoSuspend == 0 {
		return newFinding(snap,
			"no auto-suspend configured",
			domain.RecommendSetAutoSuspend,
			monthlyCost*0.3, monthlyCost,
			map[string]string{
				domain.AttrWarehouseSize:     size,
				"suggested_auto_suspend_sec": "60",
			}), nil
	}

	return nil, nil
}

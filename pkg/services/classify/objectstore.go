package classify

import (
	"strconv"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

func (c *Classifier) classifyObjectStore(snap domain.Snapshot) (*domain.Finding, error) {
	metrics, err := requireMetrics(snap, domain.MetricSizeGB, domain.MetricDaysSinceAccess)
	if err != nil {
		return nil, err
	}

	sizeGB := metrics[domain.MetricSizeGB]
	daysSinceAccess := metrics[domain.MetricDaysSinceAccess]
	storageClass := snap.Attr(domain.AttrStorageClass)
	if storageClass == "" {
		storageClass = "STANDARD"
	}

	monthlyCost := snap.MonthlyCost
	if monthlyCost == 0 {
		monthlyCost = sizeGB * storageClassRate(storageClass)
	}

	// Cold data still in the standard class: archive tier is ~80% cheaper.
	if daysSinceAccess > c.settings.ColdAccessDays && storageClass == "STANDARD" {
		return newFinding(snap,
			"cold storage - no access beyond archive threshold",
			domain.RecommendGlacier,
			monthlyCost*0.8, monthlyCost,
			map[string]string{
				domain.AttrStorageClass:  storageClass,
				"size_gb":                strconv.FormatFloat(sizeGB, 'f', 1, 64),
				"days_since_last_access": strconv.FormatFloat(daysSinceAccess, 'f', 0, 64),
			}), nil
	}

	// Incomplete multipart uploads: storage paid for but never usable.
	incompleteGB, _ := snap.Metric(domain.MetricIncompleteSizeGB)
	if incompleteGB > c.settings.IncompleteUploadsMinGB {
		uploads, _ := snap.Metric(domain.MetricIncompleteUploads)
		wasted := incompleteGB * storageClassRate(storageClass)
		return newFinding(snap,
			"incomplete multipart uploads wasting storage",
			domain.RecommendAbortMultipart,
			wasted, wasted,
			map[string]string{
				"incomplete_uploads": strconv.FormatFloat(uploads, 'f', 0, 64),
				"wasted_gb":          strconv.FormatFloat(incompleteGB, 'f', 1, 64),
			}), nil
	}

	return nil, nil
}

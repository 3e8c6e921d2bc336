package classify

import (
	"fmt"
	"strconv"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

const hoursPerMonth = 24 * 30

func (c *Classifier) classifyCompute(snap domain.Snapshot) (*domain.Finding, error) {
	metrics, err := requireMetrics(snap, domain.MetricAvgCPUPercent, domain.MetricAvgNetworkInBps)
	if err != nil {
		return nil, err
	}

	monthlyCost := snap.MonthlyCost
	if monthlyCost == 0 {
		hourly, ok := snap.Metric(domain.MetricHourlyCost)
		if !ok {
			return nil, fmt.Errorf("%w: %s has neither monthly nor hourly cost",
				ErrInsufficientData, snap.ID)
		}
		monthlyCost = hourly * hoursPerMonth
	}

	cpu := metrics[domain.MetricAvgCPUPercent]
	network := metrics[domain.MetricAvgNetworkInBps]
	daysRunning, _ := snap.Metric(domain.MetricDaysRunning)
	instanceType := snap.Attr(domain.AttrInstanceType)

	// Zombie: effectively no CPU and no inbound traffic.
	if cpu < c.settings.CPUZombiePercent && network < c.settings.NetworkZombieBps {
		metadata := map[string]string{
			domain.AttrInstanceType: instanceType,
			"avg_cpu_percent":       strconv.FormatFloat(cpu, 'f', 2, 64),
			"days_running":          strconv.FormatFloat(daysRunning, 'f', 0, 64),
		}

		// Young instances get stopped, not terminated: they may still be
		// mid-provisioning or part of a rollout.
		if daysRunning < c.settings.MinSafeAgeDays {
			return newFinding(snap,
				"zombie instance - extremely low utilization",
				domain.RecommendStop,
				monthlyCost*0.8, monthlyCost, metadata), nil
		}
		return newFinding(snap,
			"zombie instance - extremely low utilization",
			domain.RecommendTerminate,
			monthlyCost, monthlyCost, metadata), nil
	}

	// Oversized: running real work, but well under provisioned capacity.
	if cpu < c.settings.CPUResizePercent {
		savings := monthlyCost * 0.5
		metadata := map[string]string{
			domain.AttrInstanceType: instanceType,
			"avg_cpu_percent":       strconv.FormatFloat(cpu, 'f', 2, 64),
		}
		if suggested, ok := nextInstanceTierDown(instanceType); ok {
			metadata["suggested_instance_type"] = suggested
			if current, okCur := instanceHourlyPrice(instanceType); okCur {
				if target, okTgt := instanceHourlyPrice(suggested); okTgt {
					savings = (current - target) * hoursPerMonth
				}
			}
		}
		return newFinding(snap,
			"oversized instance - low CPU for instance class",
			domain.RecommendResize,
			savings, monthlyCost, metadata), nil
	}

	return nil, nil
}

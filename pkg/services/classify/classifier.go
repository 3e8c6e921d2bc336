package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/rs/zerolog"
)

// ErrInsufficientData marks a snapshot whose required metrics are missing or
// malformed. The resource is skipped with a reported outcome, never silently
// classified.
var ErrInsufficientData = errors.New("insufficient data")

// Classifier applies threshold rules to resource snapshots. Rules are
// evaluated in a fixed priority order per resource type; the first matching
// rule wins, so a resource yields at most one finding per run.
type Classifier struct {
	settings Settings
}

func NewClassifier(settings Settings) (*Classifier, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{settings: settings}, nil
}

// Classify evaluates one snapshot. It returns (nil, nil) when the resource
// is healthy, a finding when a rule matched, or an error wrapping
// ErrInsufficientData when required metrics are absent.
func (c *Classifier) Classify(snap domain.Snapshot) (*domain.Finding, error) {
	switch snap.Type {
	case domain.ResourceCompute:
		return c.classifyCompute(snap)
	case domain.ResourceBlockVolume:
		return c.classifyBlockVolume(snap)
	case domain.ResourceWarehouse:
		return c.classifyWarehouse(snap)
	case domain.ResourceObjectStore:
		return c.classifyObjectStore(snap)
	default:
		return nil, fmt.Errorf("%w: unknown resource type %q", ErrInsufficientData, snap.Type)
	}
}

// requireMetrics collects the named metrics, failing with ErrInsufficientData
// listing every missing name.
func requireMetrics(snap domain.Snapshot, names ...string) (map[string]float64, error) {
	values := make(map[string]float64, len(names))
	var missing []string
	for _, name := range names {
		v, ok := snap.Metric(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing metrics [%s]",
			ErrInsufficientData, snap.ID, strings.Join(missing, ", "))
	}
	return values, nil
}

func newFinding(snap domain.Snapshot, issue string, rec domain.Recommendation,
	savings, monthlyCost float64, metadata map[string]string) *domain.Finding {
	if savings < 0 {
		savings = 0
	}
	// Providers that need extra routing context to act on a resource pass
	// it through the snapshot.
	if rg := snap.Attr(domain.AttrResourceGroup); rg != "" {
		metadata[domain.AttrResourceGroup] = rg
	}
	return &domain.Finding{
		ResourceType:     snap.Type,
		ResourceID:       snap.ID,
		Platform:         snap.Platform,
		Issue:            issue,
		Recommendation:   rec,
		Severity:         domain.SeverityForSavings(savings),
		EstimatedSavings: savings,
		CurrentCost:      monthlyCost,
		Metadata:         metadata,
	}
}

// Result is the outcome of classifying one batch of snapshots.
type Result struct {
	Findings []domain.Finding
	Skipped  []domain.SkippedResource
}

// ClassifyAll fans classification out over a bounded worker pool. Snapshots
// are independent and read-only, so this is safe; output order follows input
// order regardless of scheduling.
func (c *Classifier) ClassifyAll(ctx context.Context, snaps []domain.Snapshot) Result {
	logger := zerolog.Ctx(ctx)

	type slot struct {
		finding *domain.Finding
		skipped *domain.SkippedResource
	}
	slots := make([]slot, len(snaps))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.settings.Concurrency)
	for i := range snaps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			finding, err := c.Classify(snaps[i])
			if err != nil {
				logger.Warn().
					Str("resource_id", snaps[i].ID).
					Str("resource_type", string(snaps[i].Type)).
					Err(err).
					Msg("resource skipped")
				slots[i].skipped = &domain.SkippedResource{
					ResourceType: snaps[i].Type,
					ResourceID:   snaps[i].ID,
					Reason:       err.Error(),
				}
				return
			}
			slots[i].finding = finding
		}(i)
	}
	wg.Wait()

	var result Result
	for _, s := range slots {
		if s.finding != nil {
			result.Findings = append(result.Findings, *s.finding)
		}
		if s.skipped != nil {
			result.Skipped = append(result.Skipped, *s.skipped)
		}
	}
	return result
}

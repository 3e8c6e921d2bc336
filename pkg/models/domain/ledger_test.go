package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerSavingsSplit(t *testing.T) {
	ledger := NewExecutionLedger(ModeExecute)

	ledger.Append(ExecutionRecord{
		Action:         Action{ResourceID: "i-1", Kind: RecommendTerminate, EstimatedSavings: 100},
		State:          ActionSucceeded,
		SavingsApplied: 100,
	})
	ledger.Append(ExecutionRecord{
		Action: Action{ResourceID: "i-2", Kind: RecommendStop, EstimatedSavings: 40},
		State:  ActionSkipped,
	})
	ledger.Append(ExecutionRecord{
		Action: Action{ResourceID: "vol-1", Kind: RecommendDelete, EstimatedSavings: 25},
		State:  ActionFailed,
	})

	assert.InDelta(t, 100, ledger.RealizedSavings(), 0.001)
	assert.InDelta(t, 65, ledger.PotentialSavings(), 0.001)

	counts := ledger.CountByState()
	assert.Equal(t, 1, counts[ActionSucceeded])
	assert.Equal(t, 1, counts[ActionSkipped])
	assert.Equal(t, 1, counts[ActionFailed])
}

func TestLedgerHasSucceeded(t *testing.T) {
	ledger := NewExecutionLedger(ModeExecute)
	ledger.Append(ExecutionRecord{
		Action: Action{ResourceID: "i-1", Kind: RecommendTerminate},
		State:  ActionSucceeded,
	})
	ledger.Append(ExecutionRecord{
		Action: Action{ResourceID: "i-2", Kind: RecommendStop},
		State:  ActionFailed,
	})

	assert.True(t, ledger.HasSucceeded("i-1", RecommendTerminate))
	// same resource, different kind
	assert.False(t, ledger.HasSucceeded("i-1", RecommendStop))
	// failed entries never count as applied
	assert.False(t, ledger.HasSucceeded("i-2", RecommendStop))
}

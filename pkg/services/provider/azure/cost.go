package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
)

type costClient struct {
	subscriptionID string
	client         *armcostmanagement.QueryClient
}

func newCostClient(subscriptionID string, credential azcore.TokenCredential) (*costClient, error) {
	client, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}
	return &costClient{subscriptionID: subscriptionID, client: client}, nil
}

func (c *costClient) monthlySpendByService(ctx context.Context) (map[string]float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, -1, 0)
	scope := fmt.Sprintf("/subscriptions/%s", c.subscriptionID)

	definition := armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(start),
			To:   to.Ptr(end),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr("ServiceName"),
				},
			},
		},
	}

	resp, err := c.client.Usage(ctx, scope, definition, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	spend := make(map[string]float64)
	if resp.Properties == nil {
		return spend, nil
	}
	// Row format: [cost, serviceName, ...]
	for _, row := range resp.Properties.Rows {
		if len(row) < 2 {
			continue
		}
		cost, ok := row[0].(float64)
		if !ok {
			continue
		}
		service, ok := row[1].(string)
		if !ok {
			continue
		}
		spend[service] += cost
	}
	return spend, nil
}

// resourceGroupFromID extracts the resource group segment from a fully
// qualified ARM resource ID.
func resourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	for i := 0; i < len(parts)-1; i++ {
		if strings.EqualFold(parts[i], "resourceGroups") {
			return parts[i+1]
		}
	}
	return ""
}

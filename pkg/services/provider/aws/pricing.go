package aws

// On-demand us-east-1 rates. The Price List API is the real source; this
// table covers the common families well enough for savings estimates.
var instanceHourlyPrices = map[string]float64{
	"t2.micro":   0.0116,
	"t2.small":   0.023,
	"t2.medium":  0.0464,
	"t2.large":   0.0928,
	"t3.micro":   0.0104,
	"t3.small":   0.0208,
	"t3.medium":  0.0416,
	"t3.large":   0.0832,
	"m5.large":   0.096,
	"m5.xlarge":  0.192,
	"m5.2xlarge": 0.384,
	"m5.4xlarge": 0.768,
	"c5.large":   0.085,
	"c5.xlarge":  0.17,
	"c5.2xlarge": 0.34,
	"r5.large":   0.126,
	"r5.xlarge":  0.252,
	"r5.2xlarge": 0.504,
}

func instanceHourlyPrice(instanceType string) float64 {
	if price, ok := instanceHourlyPrices[instanceType]; ok {
		return price
	}
	return 0.05
}

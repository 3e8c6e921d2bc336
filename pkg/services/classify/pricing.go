package classify

// Mock prices - in production, use the providers' pricing APIs.
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
	"c5.4xlarge": 0.68,
	"r5.large":   0.126,
	"r5.xlarge":  0.252,
	"r5.2xlarge": 0.504,
}

// Size ladders per instance family, smallest first.
var instanceSizeLadders = map[string][]string{
	"t2": {"t2.micro", "t2.small", "t2.medium", "t2.large"},
	"t3": {"t3.micro", "t3.small", "t3.medium", "t3.large"},
	"m5": {"m5.large", "m5.xlarge", "m5.2xlarge", "m5.4xlarge"},
	"c5": {"c5.large", "c5.xlarge", "c5.2xlarge", "c5.4xlarge"},
	"r5": {"r5.large", "r5.xlarge", "r5.2xlarge"},
}

// instanceHourlyPrice reports the hourly rate for a known instance type.
func instanceHourlyPrice(instanceType string) (float64, bool) {
	price, ok := instanceHourlyPrices[instanceType]
	return price, ok
}

// nextInstanceTierDown returns the next smaller size in the same family,
// or false when the type is unknown or already the smallest.
func nextInstanceTierDown(instanceType string) (string, bool) {
	for _, ladder := range instanceSizeLadders {
		for i, t := range ladder {
			if t == instanceType && i > 0 {
				return ladder[i-1], true
			}
		}
	}
	return "", false
}

// Cost per GB-month by volume type.
var volumeGBMonthRates = map[string]float64{
	"gp3": 0.08,
	"gp2": 0.10,
	"io1": 0.125,
	"io2": 0.125,
	"st1": 0.045,
	"sc1": 0.025,
}

const defaultVolumeGBMonthRate = 0.10

func volumeGBMonthRate(volumeType string) float64 {
	if rate, ok := volumeGBMonthRates[volumeType]; ok {
		return rate
	}
	return defaultVolumeGBMonthRate
}

// Warehouse size ladder with the credit rate each size burns per hour at
// full utilization, smallest first.
var warehouseSizes = []string{
	"X-Small", "Small", "Medium", "Large", "X-Large", "2X-Large", "3X-Large", "4X-Large",
}

var warehouseCreditRates = map[string]float64{
	"X-Small":  1,
	"Small":    2,
	"Medium":   4,
	"Large":    8,
	"X-Large":  16,
	"2X-Large": 32,
	"3X-Large": 64,
	"4X-Large": 128,
}

const defaultWarehouseCreditRate = 4 // Medium

func warehouseCreditRate(size string) float64 {
	if rate, ok := warehouseCreditRates[size]; ok {
		return rate
	}
	return defaultWarehouseCreditRate
}

// warehouseSizeDown walks the ladder down by steps, clamping at X-Small.
func warehouseSizeDown(size string, steps int) (string, bool) {
	for i, s := range warehouseSizes {
		if s == size {
			if i == 0 {
				return "", false
			}
			next := i - steps
			if next < 0 {
				next = 0
			}
			return warehouseSizes[next], true
		}
	}
	return "", false
}

// Storage cost per GB-month by object storage class.
var storageClassRates = map[string]float64{
	"STANDARD":     0.023,
	"STANDARD_IA":  0.0125,
	"GLACIER":      0.004,
	"DEEP_ARCHIVE": 0.00099,
}

const standardStorageRate = 0.023

func storageClassRate(class string) float64 {
	if rate, ok := storageClassRates[class]; ok {
		return rate
	}
	return standardStorageRate
}

package premium

import "github.com/shopspring/decimal"

// Property keys read from a product's property list.
const (
	KeyPremiumRate  = "PREMIUM_RATE"
	KeyLevyRate     = "LEVY_RATE"
	KeyAdminFeeRate = "ADMIN_FEE_RATE"
)

var (
	defaultHollardPremiumRate = decimal.RequireFromString("0.0045")
	defaultTuracoPremiumRate  = decimal.RequireFromString("0.02")
	defaultLevyRate           = decimal.RequireFromString("0.05")
	defaultAdminFeeRate       = decimal.RequireFromString("0.25")
)

// Property is one key/value entry configured on a product.
type Property struct {
	Key       string
	Value     string
	ValueType string
}

// RateTable is the typed view of a product's rate properties. It is built once
// when the product is loaded; every field is always populated.
type RateTable struct {
	PremiumRate  decimal.Decimal
	LevyRate     decimal.Decimal
	AdminFeeRate decimal.Decimal
}

// NewRateTable reads the rate keys from props. The first occurrence of a key
// wins. Missing or non-numeric values take the method's default.
func NewRateTable(method Method, props []Property) RateTable {
	values := make(map[string]string, len(props))
	for _, p := range props {
		if _, seen := values[p.Key]; !seen {
			values[p.Key] = p.Value
		}
	}

	premiumDefault := defaultHollardPremiumRate
	if method == MethodTuraco {
		premiumDefault = defaultTuracoPremiumRate
	}

	return RateTable{
		PremiumRate:  rateOrDefault(values, KeyPremiumRate, premiumDefault),
		LevyRate:     rateOrDefault(values, KeyLevyRate, defaultLevyRate),
		AdminFeeRate: rateOrDefault(values, KeyAdminFeeRate, defaultAdminFeeRate),
	}
}

// DefaultRateTable is the table of a product with no rate properties.
func DefaultRateTable(method Method) RateTable {
	return NewRateTable(method, nil)
}

func rateOrDefault(values map[string]string, key string, def decimal.Decimal) decimal.Decimal {
	raw, ok := values[key]
	if !ok {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def
	}
	return d
}

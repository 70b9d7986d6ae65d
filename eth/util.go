package eth

import (
	"errors"
	"math/big"
	"strings"
)

const etherDecimals = 18

var tenPow18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// ParseEther converts a decimal ether string such as "0.5" into an exact wei
// amount using integer arithmetic only. More than 18 fractional digits is an
// error, never a rounding.
func ParseEther(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(value, "-") {
		return nil, errors.New("amount must be positive")
	}

	intPart := value
	fracPart := ""
	if i := strings.IndexByte(value, '.'); i >= 0 {
		intPart = value[:i]
		fracPart = value[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > etherDecimals {
		return nil, errors.New("amount has more than 18 decimal places")
	}
	// big.Int.SetString tolerates signs, so both parts must be checked for
	// bare digits here or "1.-5" would fold into the amount
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, errors.New("invalid amount")
	}
	fracPart += strings.Repeat("0", etherDecimals-len(fracPart))

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, errors.New("invalid amount")
	}
	frac, ok := new(big.Int).SetString(fracPart, 10)
	if !ok {
		return nil, errors.New("invalid amount")
	}

	wei := new(big.Int).Mul(whole, tenPow18)
	wei.Add(wei, frac)
	return wei, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// EscrowValue is the exact value transfer the contract expects for a
// creation call: per-slot amount times slot count, integer arithmetic only.
func EscrowValue(amountWei *big.Int, slots int64) *big.Int {
	return new(big.Int).Mul(amountWei, big.NewInt(slots))
}

package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// Monetary columns are numeric(15,0) holding integer cents. These helpers
// convert between pgtype.Numeric and the int64 cents used in the domain.

// NumericToInt64 converts a pgtype.Numeric to int64 cents. Returns an error
// if the value is NULL or overflows int64; a negative exponent (fractional
// digits) is truncated, which never happens for well-formed cents columns.
func NumericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp.
	bi := new(big.Int).Set(n.Int)

	if n.Exp > 0 {
		multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		bi.Mul(bi, multiplier)
	} else if n.Exp < 0 {
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		bi.Div(bi, divisor)
	}

	if !bi.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", bi.String())
	}

	return bi.Int64(), nil
}

// NumericToInt64Ptr converts a nullable numeric column, mapping NULL to nil.
func NumericToInt64Ptr(n pgtype.Numeric) (*int64, error) {
	if !n.Valid {
		return nil, nil
	}
	v, err := NumericToInt64(n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Int64ToNumeric converts int64 cents to pgtype.Numeric for writing.
func Int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(v),
		Exp:              0,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

// Int64PtrToNumeric converts optional cents, mapping nil to SQL NULL.
func Int64PtrToNumeric(v *int64) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{Valid: false}
	}
	return Int64ToNumeric(*v)
}

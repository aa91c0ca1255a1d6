package mathutil

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// MaxUint256 is the largest value an amount, reserve or share count may hold.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// ErrOverflow is returned when a result does not fit in 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow")
	// ErrDivisionByZero is returned for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNegative is returned when a negative value enters the unsigned domain.
	ErrNegative = errors.New("negative value")
)

// ToU256 converts x into the unsigned 256-bit domain. A nil x is zero.
func ToU256(x *big.Int) (*uint256.Int, error) {
	if x == nil {
		return new(uint256.Int), nil
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegative, x)
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", ErrOverflow, x)
	}
	return v, nil
}

func toU256Pair(a, b *big.Int) (*uint256.Int, *uint256.Int, error) {
	x, err := ToU256(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := ToU256(b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Add returns a + b.
func Add(a, b *big.Int) (*big.Int, error) {
	x, y, err := toU256Pair(a, b)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return z.ToBig(), nil
}

// Sub returns a - b, or ErrUnderflow when b > a.
func Sub(a, b *big.Int) (*big.Int, error) {
	x, y, err := toU256Pair(a, b)
	if err != nil {
		return nil, err
	}
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s", ErrUnderflow, a, b)
	}
	return z.ToBig(), nil
}

// Mul returns a * b.
func Mul(a, b *big.Int) (*big.Int, error) {
	x, y, err := toU256Pair(a, b)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s", ErrOverflow, a, b)
	}
	return z.ToBig(), nil
}

// Div returns floor(a / d).
func Div(a, d *big.Int) (*big.Int, error) {
	x, y, err := toU256Pair(a, d)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(x, y).ToBig(), nil
}

// MulDiv returns floor(a * b / d). The product must itself fit in 256 bits.
func MulDiv(a, b, d *big.Int) (*big.Int, error) {
	product, err := Mul(a, b)
	if err != nil {
		return nil, err
	}
	return Div(product, d)
}

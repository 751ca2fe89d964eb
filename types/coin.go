package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Coin is (denom, unsigned 256-bit amount), spec.md §3.
type Coin struct {
	Denom  string
	Amount *uint256.Int
}

// NewCoin constructs a Coin, treating a nil amount as zero.
func NewCoin(denom string, amount *uint256.Int) Coin {
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	return Coin{Denom: denom, Amount: amount}
}

// NewCoinFromUint64 is a convenience constructor used throughout tests and
// genesis fixtures.
func NewCoinFromUint64(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

func (c Coin) IsPositive() bool { return c.Amount != nil && !c.Amount.IsZero() }

func (c Coin) String() string { return c.Amount.String() + c.Denom }

// Add returns the sum of two coins of the same denom.
func (c Coin) Add(o Coin) (Coin, error) {
	if c.Denom != o.Denom {
		return Coin{}, ErrCoins(fmt.Sprintf("mismatched denoms: %s vs %s", c.Denom, o.Denom))
	}
	sum := new(uint256.Int).Add(c.Amount, o.Amount)
	return Coin{Denom: c.Denom, Amount: sum}, nil
}

// Sub returns c - o, erroring if it would go negative.
func (c Coin) Sub(o Coin) (Coin, error) {
	if c.Denom != o.Denom {
		return Coin{}, ErrCoins(fmt.Sprintf("mismatched denoms: %s vs %s", c.Denom, o.Denom))
	}
	if c.Amount.Lt(o.Amount) {
		return Coin{}, ErrInsufficientFunds(fmt.Sprintf("%s < %s%s", c.String(), o.Amount.String(), o.Denom))
	}
	diff := new(uint256.Int).Sub(c.Amount, o.Amount)
	return Coin{Denom: c.Denom, Amount: diff}, nil
}

// Coins is a canonical coin-set: non-empty, strictly ascending by denom,
// every amount positive, no duplicates (spec.md §3/§8).
type Coins []Coin

// Validate checks the canonical-form invariant spec.md §8 quantifies.
func (cs Coins) Validate() error {
	if len(cs) == 0 {
		return ErrCoins("coin set must be non-empty")
	}
	for i, c := range cs {
		if !c.IsPositive() {
			return ErrCoins(fmt.Sprintf("non-positive amount for denom %s", c.Denom))
		}
		if i > 0 && cs[i-1].Denom >= c.Denom {
			return ErrCoins(fmt.Sprintf("denoms not strictly ascending: %s >= %s", cs[i-1].Denom, c.Denom))
		}
	}
	return nil
}

// NewCoins builds a validated, denom-sorted Coins set from arbitrary input,
// merging duplicate denoms and dropping zero amounts.
func NewCoins(coins ...Coin) (Coins, error) {
	byDenom := make(map[string]*uint256.Int)
	order := make([]string, 0, len(coins))
	for _, c := range coins {
		if c.Amount == nil {
			continue
		}
		if _, ok := byDenom[c.Denom]; !ok {
			order = append(order, c.Denom)
			byDenom[c.Denom] = uint256.NewInt(0)
		}
		byDenom[c.Denom] = new(uint256.Int).Add(byDenom[c.Denom], c.Amount)
	}
	sort.Strings(order)
	out := make(Coins, 0, len(order))
	for _, d := range order {
		amt := byDenom[d]
		if amt.IsZero() {
			continue
		}
		out = append(out, Coin{Denom: d, Amount: amt})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// AmountOf returns the amount for denom, or zero if absent.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	for _, c := range cs {
		if c.Denom == denom {
			return c.Amount
		}
	}
	return uint256.NewInt(0)
}

// Add merges another coin set in, returning a new canonical Coins.
func (cs Coins) Add(other Coins) (Coins, error) {
	return NewCoins(append(append(Coins{}, cs...), other...)...)
}

// Sub subtracts other from cs; any resulting negative amount is an error.
func (cs Coins) Sub(other Coins) (Coins, error) {
	result := make(Coins, 0, len(cs))
	for _, c := range cs {
		sub := other.AmountOf(c.Denom)
		if c.Amount.Lt(sub) {
			return nil, ErrInsufficientFunds(fmt.Sprintf("%s%s < %s%s", c.Amount, c.Denom, sub, c.Denom))
		}
		remaining := new(uint256.Int).Sub(c.Amount, sub)
		if !remaining.IsZero() {
			result = append(result, Coin{Denom: c.Denom, Amount: remaining})
		}
	}
	for _, o := range other {
		found := false
		for _, c := range cs {
			if c.Denom == o.Denom {
				found = true
				break
			}
		}
		if !found && o.IsPositive() {
			return nil, ErrInsufficientFunds(fmt.Sprintf("0%s < %s%s", o.Denom, o.Amount, o.Denom))
		}
	}
	if len(result) == 0 {
		return Coins{}, nil
	}
	return result, nil
}

// IsAllGTE reports whether cs has, for every denom in other, at least that
// much of the coin (missing-from-cs denoms count as zero).
func (cs Coins) IsAllGTE(other Coins) bool {
	for _, o := range other {
		if cs.AmountOf(o.Denom).Lt(o.Amount) {
			return false
		}
	}
	return true
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ParseCoin parses the canonical "<amount><denom>" format, e.g. "30uatom".
func ParseCoin(s string) (Coin, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Coin{}, ErrCoins(fmt.Sprintf("no amount in coin %q", s))
	}
	amtStr, denom := s[:i], s[i:]
	if denom == "" {
		return Coin{}, ErrCoins(fmt.Sprintf("no denom in coin %q", s))
	}
	n, err := strconv.ParseUint(amtStr, 10, 64)
	if err != nil {
		amt, parseErr := uint256.FromDecimal(amtStr)
		if parseErr != nil {
			return Coin{}, ErrCoins(fmt.Sprintf("invalid amount %q: %v", amtStr, parseErr))
		}
		return NewCoin(denom, amt), nil
	}
	return NewCoinFromUint64(denom, n), nil
}

// ParseCoins parses a comma-separated list of coins into a canonical Coins.
func ParseCoins(s string) (Coins, error) {
	if strings.TrimSpace(s) == "" {
		return Coins{}, nil
	}
	parts := strings.Split(s, ",")
	coins := make([]Coin, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCoin(p)
		if err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return NewCoins(coins...)
}

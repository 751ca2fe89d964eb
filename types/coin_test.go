package types

import "testing"

func TestParseCoinRoundTrip(t *testing.T) {
	c, err := ParseCoin("1500uatom")
	if err != nil {
		t.Fatalf("ParseCoin: %v", err)
	}
	if c.Denom != "uatom" || c.String() != "1500uatom" {
		t.Fatalf("ParseCoin(1500uatom) = %+v", c)
	}

	if _, err := ParseCoin("uatom"); err == nil {
		t.Fatalf("ParseCoin accepted a coin with no amount")
	}
	if _, err := ParseCoin("500"); err == nil {
		t.Fatalf("ParseCoin accepted a coin with no denom")
	}
}

func TestParseCoinsCanonicalOrder(t *testing.T) {
	coins, err := ParseCoins("300uatom,100stake")
	if err != nil {
		t.Fatalf("ParseCoins: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("len(coins) = %d, want 2", len(coins))
	}
	if coins[0].Denom != "stake" || coins[1].Denom != "uatom" {
		t.Fatalf("ParseCoins did not sort ascending by denom: %v", coins)
	}
	if err := coins.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCoinsValidateRejectsNonCanonicalForm(t *testing.T) {
	cases := []Coins{
		{},
		{NewCoinFromUint64("uatom", 0)},
		{NewCoinFromUint64("uatom", 1), NewCoinFromUint64("uatom", 1)},
		{NewCoinFromUint64("uatom", 1), NewCoinFromUint64("atom", 1)},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: Validate accepted non-canonical coins %v", i, c)
		}
	}
}

func TestCoinsAddSub(t *testing.T) {
	a, _ := ParseCoins("100uatom,50stake")
	b, _ := ParseCoins("25uatom")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.AmountOf("uatom").Uint64() != 125 {
		t.Fatalf("sum uatom = %s, want 125", sum.AmountOf("uatom"))
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.AmountOf("uatom").Uint64() != 75 {
		t.Fatalf("diff uatom = %s, want 75", diff.AmountOf("uatom"))
	}

	if _, err := b.Sub(a); err == nil {
		t.Fatalf("Sub allowed the result to go negative")
	}
}

func TestCoinsIsAllGTE(t *testing.T) {
	have, _ := ParseCoins("100uatom,50stake")
	needOK, _ := ParseCoins("50uatom")
	needShort, _ := ParseCoins("200uatom")

	if !have.IsAllGTE(needOK) {
		t.Fatalf("IsAllGTE reported false for a satisfiable requirement")
	}
	if have.IsAllGTE(needShort) {
		t.Fatalf("IsAllGTE reported true for an unsatisfiable requirement")
	}
}

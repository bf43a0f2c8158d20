package hedgesim

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestPortfolio(t *testing.T, cash float64, margin float64, tickers ...string) *Portfolio {
	t.Helper()
	p, err := NewPortfolio(USD(cash), decimal.NewFromFloat(margin), tickers...)
	if err != nil {
		t.Fatalf("NewPortfolio() err = %v", err)
	}
	return p
}

func TestExecute_Buy(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)

	got := p.Execute("AAPL", Buy, 100, USD(150))

	if want := int64(100); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	if got, want := p.Cash(), USD(85_000); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	pos := p.Position("AAPL")
	if got, want := pos.LongShares, int64(100); got != want {
		t.Errorf("LongShares = %d, want %d", got, want)
	}
	if got, want := pos.LongCostBasis, USD(150); !got.Equal(want) {
		t.Errorf("LongCostBasis = %s, want %s", got, want)
	}
}

func TestExecute_Buy_WeightedBasis(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)

	p.Execute("AAPL", Buy, 100, USD(150))
	p.Execute("AAPL", Buy, 50, USD(180))

	// (100*150 + 50*180) / 150 = 160
	pos := p.Position("AAPL")
	if got, want := pos.LongCostBasis, USD(160); !got.Equal(want) {
		t.Errorf("LongCostBasis = %s, want %s", got, want)
	}
	if got, want := pos.LongShares, int64(150); got != want {
		t.Errorf("LongShares = %d, want %d", got, want)
	}
}

func TestExecute_Buy_PartialFill(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0.5)

	// 1000/150 affords 6 shares, not the 10 requested.
	got := p.Execute("AAPL", Buy, 10, USD(150))

	if want := int64(6); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	if got, want := p.Cash(), USD(100); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	if p.Cash().IsNegative() {
		t.Errorf("Cash() = %s went negative", p.Cash())
	}
}

func TestExecute_Buy_NoCash(t *testing.T) {
	p := newTestPortfolio(t, 100, 0.5)

	if got := p.Execute("AAPL", Buy, 10, USD(150)); got != 0 {
		t.Errorf("Execute() = %d, want 0", got)
	}
	if got, want := p.Cash(), USD(100); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
}

func TestExecute_Sell(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)
	p.Execute("AAPL", Buy, 100, USD(150))

	got := p.Execute("AAPL", Sell, 50, USD(160))

	if want := int64(50); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	if got, want := p.Cash(), USD(93_000); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	if got, want := p.RealizedGains("AAPL").Long, USD(500); !got.Equal(want) {
		t.Errorf("RealizedGains().Long = %s, want %s", got, want)
	}
	if got, want := p.Position("AAPL").LongShares, int64(50); got != want {
		t.Errorf("LongShares = %d, want %d", got, want)
	}
}

func TestExecute_Sell_ClipsToHolding(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)
	p.Execute("AAPL", Buy, 10, USD(150))

	if got, want := p.Execute("AAPL", Sell, 100, USD(160)), int64(10); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
}

func TestExecute_Sell_All_ResetsBasis(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)
	p.Execute("AAPL", Buy, 10, USD(150))
	p.Execute("AAPL", Sell, 10, USD(160))

	pos := p.Position("AAPL")
	if pos.LongShares != 0 {
		t.Errorf("LongShares = %d, want 0", pos.LongShares)
	}
	if !pos.LongCostBasis.IsZero() {
		t.Errorf("LongCostBasis = %s, want 0", pos.LongCostBasis)
	}
}

func TestExecute_Short(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0.5)

	got := p.Execute("XYZ", Short, 40, USD(20))

	if want := int64(40); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	// proceeds 800, margin 400: cash 1000 + 800 - 400.
	if got, want := p.Cash(), USD(1_400); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	pos := p.Position("XYZ")
	if got, want := pos.ShortShares, int64(40); got != want {
		t.Errorf("ShortShares = %d, want %d", got, want)
	}
	if got, want := pos.ShortCostBasis, USD(20); !got.Equal(want) {
		t.Errorf("ShortCostBasis = %s, want %s", got, want)
	}
	if got, want := pos.ShortMarginUsed, USD(400); !got.Equal(want) {
		t.Errorf("ShortMarginUsed = %s, want %s", got, want)
	}
	if got, want := p.MarginUsed(), USD(400); !got.Equal(want) {
		t.Errorf("MarginUsed() = %s, want %s", got, want)
	}
}

func TestExecute_Short_PartialFill(t *testing.T) {
	p := newTestPortfolio(t, 100, 0.5)

	// margin per share is 10, so 100 of cash affords 10 shares.
	got := p.Execute("XYZ", Short, 40, USD(20))

	if want := int64(10); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	if got, want := p.MarginUsed(), USD(100); !got.Equal(want) {
		t.Errorf("MarginUsed() = %s, want %s", got, want)
	}
}

func TestExecute_Short_ZeroMarginRequirement(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0)

	// Zero margin is always affordable: full fill, all proceeds are cash.
	if got, want := p.Execute("XYZ", Short, 40, USD(20)), int64(40); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	if got, want := p.Cash(), USD(1_800); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	if !p.MarginUsed().IsZero() {
		t.Errorf("MarginUsed() = %s, want 0", p.MarginUsed())
	}
}

func TestExecute_Cover(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0.5)
	p.Execute("XYZ", Short, 40, USD(20))

	got := p.Execute("XYZ", Cover, 20, USD(15))

	if want := int64(20); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
	// released margin 200, cover cost 300: cash 1400 + 200 - 300.
	if got, want := p.Cash(), USD(1_300); !got.Equal(want) {
		t.Errorf("Cash() = %s, want %s", got, want)
	}
	if got, want := p.RealizedGains("XYZ").Short, USD(100); !got.Equal(want) {
		t.Errorf("RealizedGains().Short = %s, want %s", got, want)
	}
	pos := p.Position("XYZ")
	if got, want := pos.ShortShares, int64(20); got != want {
		t.Errorf("ShortShares = %d, want %d", got, want)
	}
	if got, want := pos.ShortMarginUsed, USD(200); !got.Equal(want) {
		t.Errorf("ShortMarginUsed = %s, want %s", got, want)
	}
	if got, want := p.MarginUsed(), USD(200); !got.Equal(want) {
		t.Errorf("MarginUsed() = %s, want %s", got, want)
	}
}

func TestExecute_Cover_All_Resets(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0.5)
	p.Execute("XYZ", Short, 40, USD(20))
	p.Execute("XYZ", Cover, 40, USD(15))

	pos := p.Position("XYZ")
	if pos.ShortShares != 0 {
		t.Errorf("ShortShares = %d, want 0", pos.ShortShares)
	}
	if !pos.ShortCostBasis.IsZero() {
		t.Errorf("ShortCostBasis = %s, want 0", pos.ShortCostBasis)
	}
	if !pos.ShortMarginUsed.IsZero() {
		t.Errorf("ShortMarginUsed = %s, want 0", pos.ShortMarginUsed)
	}
	if !p.MarginUsed().IsZero() {
		t.Errorf("MarginUsed() = %s, want 0", p.MarginUsed())
	}
}

func TestExecute_Cover_ClipsToShort(t *testing.T) {
	p := newTestPortfolio(t, 1_000, 0.5)
	p.Execute("XYZ", Short, 10, USD(20))

	if got, want := p.Execute("XYZ", Cover, 40, USD(15)), int64(10); got != want {
		t.Errorf("Execute() = %d, want %d", got, want)
	}
}

func TestExecute_NoOps(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		quantity int64
		price    Money
	}{
		{"hold", Hold, 10, USD(150)},
		{"zero quantity", Buy, 0, USD(150)},
		{"negative quantity", Buy, -10, USD(150)},
		{"zero price", Buy, 10, USD(0)},
		{"negative price", Buy, 10, USD(-150)},
		{"unknown action", Action(42), 10, USD(150)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPortfolio(t, 1_000, 0.5)

			if got := p.Execute("AAPL", tc.action, tc.quantity, tc.price); got != 0 {
				t.Errorf("Execute() = %d, want 0", got)
			}
			if got, want := p.Cash(), USD(1_000); !got.Equal(want) {
				t.Errorf("Cash() = %s, want %s", got, want)
			}
			if !p.Position("AAPL").IsFlat() {
				t.Errorf("Position() = %+v, want flat", p.Position("AAPL"))
			}
		})
	}
}

// The global margin total must always equal the per-ticker sum, whatever the
// sequence of trades.
func TestExecute_MarginConsistency(t *testing.T) {
	p := newTestPortfolio(t, 10_000, 0.5)

	p.Execute("XYZ", Short, 40, USD(20))
	p.Execute("ABC", Short, 10, USD(100))
	p.Execute("XYZ", Cover, 15, USD(18))
	p.Execute("ABC", Cover, 10, USD(90))
	p.Execute("XYZ", Short, 5, USD(22))

	sum := USD(0)
	for ticker := range p.Tickers() {
		sum = sum.Add(p.Position(ticker).ShortMarginUsed)
	}
	if got, want := p.MarginUsed(), sum; !got.Equal(want) {
		t.Errorf("MarginUsed() = %s, want per-ticker sum %s", got, want)
	}
}

// Cash plus the cost of what is held always equals the initial cash plus the
// realized gains, for long-only sequences.
func TestExecute_CashConservation(t *testing.T) {
	p := newTestPortfolio(t, 100_000, 0.5)

	p.Execute("AAPL", Buy, 100, USD(150))
	p.Execute("AAPL", Buy, 50, USD(180))
	p.Execute("AAPL", Sell, 70, USD(170))
	p.Execute("AAPL", Buy, 20, USD(160))

	pos := p.Position("AAPL")
	held := pos.LongCostBasis.Mul(pos.LongShares)
	total := p.Cash().Add(held)
	want := USD(100_000).Add(p.RealizedGains("AAPL").Long)
	if !total.Equal(want) {
		t.Errorf("cash + held basis = %s, want %s", total, want)
	}
}

func TestParseAction(t *testing.T) {
	for _, action := range []Action{Hold, Buy, Sell, Short, Cover} {
		got, err := ParseAction(action.String())
		if err != nil {
			t.Fatalf("ParseAction(%q) err = %v", action, err)
		}
		if got != action {
			t.Errorf("ParseAction(%q) = %v, want %v", action, got, action)
		}
	}
	if _, err := ParseAction("liquidate"); err == nil {
		t.Error("ParseAction(\"liquidate\") expected an error")
	}
}

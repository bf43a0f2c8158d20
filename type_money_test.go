package hedgesim

import "testing"

func TestMoney_Shares(t *testing.T) {
	tests := []struct {
		name   string
		amount Money
		price  Money
		want   int64
	}{
		{"exact", USD(1_000), USD(100), 10},
		{"floors", USD(1_000), USD(150), 6},
		{"too expensive", USD(100), USD(150), 0},
		{"zero price", USD(1_000), USD(0), 0},
		{"negative price", USD(1_000), USD(-10), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.amount.Shares(tc.price); got != tc.want {
				t.Errorf("Shares() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMoney_MulDiv(t *testing.T) {
	price := USD(150.5)
	if got, want := price.Mul(4), USD(602); !got.Equal(want) {
		t.Errorf("Mul() = %s, want %s", got, want)
	}
	if got, want := USD(602).Div(4), price; !got.Equal(want) {
		t.Errorf("Div() = %s, want %s", got, want)
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	// The zero Money has no currency and adopts the other operand's.
	var zero Money
	got := zero.Add(USD(10))
	if want := USD(10); !got.Equal(want) {
		t.Errorf("Add() = %s, want %s", got, want)
	}
	if got.Currency() != "USD" {
		t.Errorf("Currency() = %q, want USD", got.Currency())
	}
}

func TestMoney_String(t *testing.T) {
	if got, want := USD(1234.5).String(), "$1,234.50"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPercent_SignedString(t *testing.T) {
	tests := []struct {
		p    Percent
		want string
	}{
		{3, "+3.00%"},
		{-4.2, "-4.20%"},
		{0, "-"},
	}
	for _, tc := range tests {
		if got := tc.p.SignedString(); got != tc.want {
			t.Errorf("SignedString(%v) = %q, want %q", float64(tc.p), got, tc.want)
		}
	}
}

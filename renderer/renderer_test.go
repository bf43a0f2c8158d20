package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"hedgesim"
	"hedgesim/date"
)

func sampleResult() *hedgesim.Result {
	return &hedgesim.Result{
		Period:          date.Range{From: date.New(2025, 6, 2), To: date.New(2025, 6, 30)},
		Tickers:         []string{"AAA"},
		InitialCapital:  hedgesim.USD(100_000),
		FinalValue:      hedgesim.USD(103_000),
		TotalReturn:     3,
		AbsoluteReturn:  hedgesim.USD(3_000),
		BenchmarkReturn: 1,
		ExcessReturn:    2,
		Decisions: []hedgesim.ExecutedDecision{
			{Ticker: "AAA", Action: hedgesim.Buy, Requested: 100, Executed: 100, Price: hedgesim.USD(110), Confidence: 80},
		},
		Portfolio: hedgesim.PortfolioSnapshot{
			Cash:      hedgesim.USD(92_000),
			Positions: map[string]hedgesim.Position{"AAA": {LongShares: 100, LongCostBasis: hedgesim.USD(110)}},
			RealizedGains: map[string]hedgesim.RealizedGains{
				"AAA": {Long: hedgesim.USD(0), Short: hedgesim.USD(0)},
			},
		},
	}
}

// structure parses the markdown and counts headings and tables, making sure
// the report is well formed and not just a blob of text.
func structure(t *testing.T, md string) (headings, tables int) {
	t.Helper()
	parser := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()
	source := []byte(md)
	root := parser.Parse(text.NewReader(source))

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			headings++
		case *extast.Table:
			tables++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return headings, tables
}

func TestResultMarkdown(t *testing.T) {
	md := ResultMarkdown(sampleResult())

	headings, tables := structure(t, md)
	if headings < 4 {
		t.Errorf("got %d headings, want at least 4:\n%s", headings, md)
	}
	if tables != 3 {
		t.Errorf("got %d tables, want 3:\n%s", tables, md)
	}
	for _, want := range []string{"AAA", "+3.00%", "$103,000.00", "buy"} {
		if !strings.Contains(md, want) {
			t.Errorf("report does not mention %q:\n%s", want, md)
		}
	}
}

func TestEqualWeightMarkdown(t *testing.T) {
	res := &hedgesim.EqualWeightResult{
		Period:         date.Range{From: date.New(2025, 6, 2), To: date.New(2025, 6, 30)},
		InitialCapital: hedgesim.USD(100_000),
		FinalValue:     hedgesim.USD(103_000),
		TotalReturn:    3,
		Positions: []hedgesim.TickerReturn{
			{Ticker: "AAA", Shares: 500, StartPrice: hedgesim.USD(100), EndPrice: hedgesim.USD(110),
				Invested: hedgesim.USD(50_000), FinalValue: hedgesim.USD(55_000), Return: 10},
		},
		AverageReturn: 10,
		BestReturn:    10, BestTicker: "AAA",
		WorstReturn: 10, WorstTicker: "AAA",
	}

	md := EqualWeightMarkdown(res)

	headings, tables := structure(t, md)
	if headings < 3 {
		t.Errorf("got %d headings, want at least 3:\n%s", headings, md)
	}
	if tables != 2 {
		t.Errorf("got %d tables, want 2:\n%s", tables, md)
	}
	if !strings.Contains(md, "+10.00%") {
		t.Errorf("report does not mention the return:\n%s", md)
	}
}

func TestBatchMarkdown(t *testing.T) {
	md := BatchMarkdown([]*hedgesim.Result{sampleResult()})

	_, tables := structure(t, md)
	if tables != 1 {
		t.Errorf("got %d tables, want 1:\n%s", tables, md)
	}
	if !strings.Contains(md, "AAA") {
		t.Errorf("report does not mention the ticker:\n%s", md)
	}
}

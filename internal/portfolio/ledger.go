package portfolio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientFunds rejects a buy whose cost exceeds available cash.
// Core state is unchanged when it is returned.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Holding is a single position. Prices and cost basis always carry exactly
// two decimal places after any mutation.
type Holding struct {
	Ticker   string  `json:"ticker"`
	Sector   string  `json:"sector,omitempty"`
	Shares   int     `json:"shares"`
	AvgPrice float64 `json:"avgPrice"`
	Price    float64 `json:"price"`
}

// Portfolio is the player's ledger: an ordered set of holdings (unique
// ticker) plus cash. It has a single owner (the game session) and is not
// internally synchronized.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
	Cash     float64   `json:"cash"`
}

// New builds a portfolio from starting cash and an initial book.
func New(cash float64, holdings []Holding) Portfolio {
	book := make([]Holding, len(holdings))
	copy(book, holdings)
	for i := range book {
		book[i].Price = Round2(book[i].Price)
		book[i].AvgPrice = Round2(book[i].AvgPrice)
	}
	return Portfolio{Holdings: book, Cash: Round2(cash)}
}

// DefaultBook returns the standard eight-ticker starting book spanning six
// sectors, so every sector impact layer has something to bite on.
func DefaultBook() []Holding {
	return []Holding{
		{Ticker: "AAPL", Sector: "Tech", Shares: 20, AvgPrice: 150.00, Price: 151.80},
		{Ticker: "MSFT", Sector: "Tech", Shares: 12, AvgPrice: 310.00, Price: 312.40},
		{Ticker: "NVDA", Sector: "Tech", Shares: 6, AvgPrice: 1080.00, Price: 1092.50},
		{Ticker: "TSLA", Sector: "Auto", Shares: 10, AvgPrice: 220.00, Price: 221.70},
		{Ticker: "XOM", Sector: "Energy", Shares: 15, AvgPrice: 115.00, Price: 115.60},
		{Ticker: "JPM", Sector: "Financials", Shares: 14, AvgPrice: 195.00, Price: 196.10},
		{Ticker: "WMT", Sector: "Consumer", Shares: 18, AvgPrice: 165.00, Price: 165.90},
		{Ticker: "JNJ", Sector: "Healthcare", Shares: 10, AvgPrice: 158.00, Price: 158.70},
	}
}

// Holding returns the position for a ticker.
func (p Portfolio) Holding(ticker string) (Holding, bool) {
	for _, h := range p.Holdings {
		if h.Ticker == ticker {
			return h, true
		}
	}
	return Holding{}, false
}

// Buy executes a purchase at the given price. The whole order fails with
// ErrInsufficientFunds when cost exceeds cash; partial fills do not exist
// at this layer.
func (p *Portfolio) Buy(ticker string, qty int, price float64) error {
	if qty < 1 {
		return fmt.Errorf("buy %s: qty must be >= 1, got %d", ticker, qty)
	}
	i := p.index(ticker)
	if i < 0 {
		return fmt.Errorf("buy %s: unknown ticker", ticker)
	}
	cost := price * float64(qty)
	if cost > p.Cash {
		return fmt.Errorf("buy %d %s at %.2f: %w", qty, ticker, price, ErrInsufficientFunds)
	}
	h := &p.Holdings[i]
	oldShares := h.Shares
	h.Shares += qty
	h.AvgPrice = Round2((h.AvgPrice*float64(oldShares) + price*float64(qty)) / float64(h.Shares))
	p.Cash = Round2(p.Cash - cost)
	return nil
}

// Sell executes a sale at the given price, clamping to the held quantity.
// It returns the executed quantity. Overselling is a caller-side
// precondition; the clamp here is the defensive floor, not the contract.
func (p *Portfolio) Sell(ticker string, qty int, price float64) int {
	if qty < 1 {
		return 0
	}
	i := p.index(ticker)
	if i < 0 {
		return 0
	}
	h := &p.Holdings[i]
	sellQty := qty
	if sellQty > h.Shares {
		sellQty = h.Shares
	}
	if sellQty == 0 {
		return 0
	}
	h.Shares -= sellQty
	p.Cash = Round2(p.Cash + Round2(price*float64(sellQty)))
	return sellQty
}

// Value is total portfolio value: market value of all holdings plus cash.
func (p Portfolio) Value() float64 {
	v := p.Cash
	for _, h := range p.Holdings {
		v += h.Price * float64(h.Shares)
	}
	return Round2(v)
}

// TotalPnL is unrealized profit and loss against cost basis.
func (p Portfolio) TotalPnL() float64 {
	var pnl float64
	for _, h := range p.Holdings {
		pnl += (h.Price - h.AvgPrice) * float64(h.Shares)
	}
	return Round2(pnl)
}

// Clone deep-copies the portfolio.
func (p Portfolio) Clone() Portfolio {
	book := make([]Holding, len(p.Holdings))
	copy(book, p.Holdings)
	return Portfolio{Holdings: book, Cash: p.Cash}
}

func (p *Portfolio) index(ticker string) int {
	for i, h := range p.Holdings {
		if h.Ticker == ticker {
			return i
		}
	}
	return -1
}

// Round2 rounds a money amount to two decimal places. Every ledger
// mutation rounds at the same points the original arithmetic did, drift
// included.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

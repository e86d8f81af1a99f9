package models

// Asset classes. Each class has exactly one investment wallet per user.
const (
	AssetCrypto = "crypto"
	AssetStock  = "stock"
	AssetGold   = "gold"
	AssetOther  = "other"
)

// Investment transaction log types.
const (
	InvTxBuy     = "BUY"
	InvTxSell    = "SELL"
	InvTxDeposit = "DEPOSIT"
	InvTxReset   = "RESET"
)

// Holding is a currently-owned investment position. Prices are whole rupiah;
// Amount is the held quantity and may be fractional (e.g. 0.35 BTC).
type Holding struct {
	ID          string  `json:"id"`
	UserID      int64   `json:"-"`
	Name        string  `json:"name"`
	Ticker      string  `json:"ticker"`
	AssetType   string  `json:"type"`
	Platform    string  `json:"platform"`
	AvgBuyPrice int64   `json:"avgBuyPrice"`
	CurrentPrice int64  `json:"currentPrice"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"createdAt"`
}

// Wallet is the cash balance for one asset class, funding BUYs and
// receiving SELL proceeds.
type Wallet struct {
	ID        string `json:"id"`
	UserID    int64  `json:"-"`
	AssetType string `json:"type"`
	Balance   int64  `json:"balance"`
}

// InvestmentTransaction is one row of the append-only audit log. PnL is set
// on SELL rows only.
type InvestmentTransaction struct {
	ID        string  `json:"id"`
	UserID    int64   `json:"-"`
	Type      string  `json:"type"`
	AssetName string  `json:"assetName"`
	AssetType string  `json:"assetType"`
	Amount    float64 `json:"amount"`
	Price     int64   `json:"price"`
	Total     int64   `json:"total"`
	PnL       *int64  `json:"pnl,omitempty"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"createdAt"`
}

package pricing

// SalesChannel identifies where a quote is sold.
type SalesChannel string

const (
	ChannelDirect       SalesChannel = "Direto"
	ChannelMercadoLivre SalesChannel = "MercadoLivre"
	ChannelShopee       SalesChannel = "Shopee"
	ChannelAmazon       SalesChannel = "Amazon"
	ChannelOther        SalesChannel = "Outros"
)

// MarketplaceFeeRule is the fee a channel charges on each sale: a percentage of
// the gross price plus a fixed amount.
type MarketplaceFeeRule struct {
	Channel SalesChannel `json:"channel"`
	Percent float64      `json:"percent"`
	Fixed   float64      `json:"fixed"`
}

// Rate returns Percent as a fraction.
func (r MarketplaceFeeRule) Rate() float64 {
	return r.Percent / 100.0
}

// DefaultMarketplaceFees returns the fee schedule used when none is configured.
func DefaultMarketplaceFees() []MarketplaceFeeRule {
	return []MarketplaceFeeRule{
		{Channel: ChannelDirect, Percent: 0, Fixed: 0},
		{Channel: ChannelMercadoLivre, Percent: 16, Fixed: 5},
		{Channel: ChannelShopee, Percent: 14, Fixed: 3},
		{Channel: ChannelAmazon, Percent: 15, Fixed: 0},
		{Channel: ChannelOther, Percent: 0, Fixed: 0},
	}
}

// FeeTable resolves channels to fee rules.
type FeeTable struct {
	rules map[SalesChannel]MarketplaceFeeRule
}

// NewFeeTable builds a table from rules. When a channel appears twice the first
// rule is kept.
func NewFeeTable(rules []MarketplaceFeeRule) FeeTable {
	t := FeeTable{rules: make(map[SalesChannel]MarketplaceFeeRule, len(rules))}
	for _, r := range rules {
		if _, ok := t.rules[r.Channel]; !ok {
			t.rules[r.Channel] = r
		}
	}
	return t
}

// Lookup returns the rule for channel, or a zero-fee rule when the channel is unknown.
func (t FeeTable) Lookup(channel SalesChannel) MarketplaceFeeRule {
	if r, ok := t.rules[channel]; ok {
		return r
	}
	return MarketplaceFeeRule{Channel: channel}
}

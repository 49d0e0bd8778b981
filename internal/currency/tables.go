package currency

// Tables holds the static lookup data the Resolver works from. DefaultTables
// returns a fresh copy each call so tests can swap entries freely.
type Tables struct {
	// Aliases maps a canonical merchant code to gateway candidates in
	// preference order.
	Aliases map[string][]string
	// NetworkSuffixes are appended to a code when no alias matches.
	NetworkSuffixes []string
	// StableCoins maps a base wallet currency to the stablecoin variants
	// that settle to the same address family.
	StableCoins map[string][]string
}

func DefaultTables() Tables {
	return Tables{
		Aliases: map[string][]string{
			"BTC":       {"BTC", "BITCOIN", "BTCLN", "BTCSEGWIT"},
			"ETH":       {"ETH", "ETHEREUM", "ETHERC20"},
			"ETHBASE":   {"ETHBASE", "BASEETH", "ETH_BASE"},
			"SOL":       {"SOL", "SOLANA", "SOLMAINNET"},
			"BNB":       {"BNBBSC", "BNB", "BNBMAINNET", "BSC"},
			"MATIC":     {"MATIC", "MATICMAINNET", "POL", "POLYGON"},
			"TRX":       {"TRX", "TRON", "TRXMAINNET"},
			"TON":       {"TON", "TONCOIN", "TONMAINNET"},
			"AVAX":      {"AVAX", "AVAXC", "AVALANCHE"},
			"ARB":       {"ARB", "ARBITRUM"},
			"OP":        {"OP", "OPTIMISM"},
			"LTC":       {"LTC", "LITECOIN"},
			"BCH":       {"BCH", "BITCOINCASH"},
			"DOGE":      {"DOGE", "DOGECOIN"},
			"XRP":       {"XRP", "RIPPLE"},
			"XLM":       {"XLM", "STELLAR"},
			"HBAR":      {"HBAR", "HEDERA"},
			"ADA":       {"ADA", "CARDANO"},
			"DOT":       {"DOT", "POLKADOT"},
			"ALGO":      {"ALGO", "ALGORAND"},
			"SUI":       {"SUI", "SUIMAINNET"},
			"USDT":      {"USDTERC20", "USDT"},
			"USDC":      {"USDC", "USDCERC20"},
			"USDTTRC20": {"USDTTRC20"},
			"USDTBSC":   {"USDTBSC"},
			"USDCBSC":   {"USDCBSC"},
			"USDTSOL":   {"USDTSOL"},
			"USDCSOL":   {"USDCSOL"},
			"USDTMATIC": {"USDTMATIC"},
			"USDCMATIC": {"USDCMATIC"},
			"USDCBASE":  {"USDCBASE"},
		},
		NetworkSuffixes: []string{"BSC", "ERC20", "TRC20", "SOL", "MATIC", "ARB", "OP", "BASE", "AVAX", "TON", "ALGO", "NEAR"},
		StableCoins: map[string][]string{
			"SOL":     {"USDCSOL", "USDTSOL"},
			"ETH":     {"USDT", "USDC", "DAI", "PYUSD"},
			"BNB":     {"USDTBSC", "USDCBSC"},
			"MATIC":   {"USDTMATIC", "USDCMATIC"},
			"TRX":     {"USDTTRC20"},
			"TON":     {"USDTTON"},
			"ARB":     {"USDTARB", "USDCARB"},
			"OP":      {"USDTOP", "USDCOP"},
			"ETHBASE": {"USDCBASE"},
			"ALGO":    {"USDCALGO"},
			"AVAX":    {"USDTAVAX", "USDCAVAX"},
		},
	}
}

// stableCoinPrefixes identify USD-pegged tokens by code prefix.
var stableCoinPrefixes = []string{"USDT", "USDC", "DAI", "PYUSD", "BUSD", "TUSD", "USDP"}

// DefaultGatewayCodes is the gateway catalog used when the live currency
// list cannot be fetched.
func DefaultGatewayCodes() []string {
	return []string{
		"btc", "eth", "ethbase", "sol", "bnbbsc", "matic", "trx", "ton", "avaxc",
		"arb", "op", "ltc", "bch", "doge", "xrp", "xlm", "hbar", "ada", "dot",
		"algo", "sui", "usdterc20", "usdc", "dai", "pyusd", "usdttrc20", "usdtbsc",
		"usdcbsc", "usdtsol", "usdcsol", "usdtmatic", "usdcmatic", "usdcbase",
		"usdtton", "usdtarb", "usdcarb", "usdtop", "usdcop", "usdcalgo",
		"usdtavax", "usdcavax",
	}
}

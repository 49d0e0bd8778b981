package paymenturi

import (
	"strings"
)

type style int

const (
	styleAddressOnly style = iota
	styleBIP21
	styleEVM
	styleSolana
	styleTron
	styleXRP
	styleStellar
	styleHedera
	styleTON
	styleCardano
	styleAlgorand
)

// Scheme describes how a currency's payment URI is rendered.
type Scheme struct {
	Name     string
	style    style
	ChainID  int64
	Decimals int32
	Token    bool
	// Mint is the SPL token mint. Solana Pay can request a token amount
	// when it is known.
	Mint string
}

func (s Scheme) supportsAmount() bool {
	if s.Token && s.Mint == "" {
		return false
	}
	return s.style != styleAddressOnly
}

func (s Scheme) supportsExtraID() bool {
	switch s.style {
	case styleXRP, styleStellar, styleHedera, styleTON, styleSolana, styleAlgorand:
		return true
	}
	return false
}

func evm(chainID int64) Scheme {
	return Scheme{Name: "ethereum", style: styleEVM, ChainID: chainID, Decimals: 18}
}

func evmToken(chainID int64) Scheme {
	return Scheme{Name: "ethereum", style: styleEVM, ChainID: chainID, Token: true}
}

func DefaultSchemes() map[string]Scheme {
	bip21 := func(name string) Scheme { return Scheme{Name: name, style: styleBIP21} }
	return map[string]Scheme{
		"BTC":     bip21("bitcoin"),
		"LTC":     bip21("litecoin"),
		"BCH":     bip21("bitcoincash"),
		"DOGE":    bip21("dogecoin"),
		"DASH":    bip21("dash"),
		"ZEC":     bip21("zcash"),
		"ETH":     evm(1),
		"ETHBASE": evm(8453),
		"ETHARB":  evm(42161),
		"ETHOP":   evm(10),
		"BNB":     evm(56),
		"BNBBSC":  evm(56),
		"MATIC":   evm(137),
		"AVAX":    evm(43114),
		"AVAXC":   evm(43114),
		"ARB":     evmToken(42161),
		"OP":      evmToken(10),
		"USDT":    evmToken(1),
		"USDC":    evmToken(1),
		"DAI":     evmToken(1),
		"PYUSD":   evmToken(1),
		"SOL":     {Name: "solana", style: styleSolana, Decimals: 9},
		"TRX":     {Name: "tron", style: styleTron, Decimals: 6},
		"XRP":     {Name: "ripple", style: styleXRP, Decimals: 6},
		"XLM":     {Name: "web+stellar", style: styleStellar, Decimals: 7},
		"HBAR":    {Name: "hedera", style: styleHedera, Decimals: 8},
		"TON":     {Name: "ton", style: styleTON, Decimals: 9},
		"ADA":     {Name: "web+cardano", style: styleCardano, Decimals: 6},
		"ALGO":    {Name: "algorand", style: styleAlgorand, Decimals: 6},
	}
}

// tokenSuffixes maps a network suffix on a token code (USDTBSC, USDCSOL) to
// the scheme of the chain the token lives on. Longer suffixes come first so
// ERC20 is not mistaken for a shorter match.
var tokenSuffixes = []struct {
	suffix string
	scheme Scheme
}{
	{"ERC20", evmToken(1)},
	{"TRC20", Scheme{Name: "tron", style: styleTron, Token: true}},
	{"MATIC", evmToken(137)},
	{"AVAX", evmToken(43114)},
	{"BASE", evmToken(8453)},
	{"ALGO", Scheme{Name: "algorand", style: styleAlgorand, Token: true}},
	{"BSC", evmToken(56)},
	{"ARB", evmToken(42161)},
	{"SOL", Scheme{Name: "solana", style: styleSolana, Token: true}},
	{"TON", Scheme{Name: "ton", style: styleTON, Token: true}},
	{"OP", evmToken(10)},
}

// splMints are the mainnet mints of the Solana stablecoins.
var splMints = map[string]string{
	"USDCSOL": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDTSOL": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
}

func lookupScheme(schemes map[string]Scheme, code string) (Scheme, bool) {
	if s, ok := schemes[code]; ok {
		return s, true
	}
	for _, ts := range tokenSuffixes {
		if len(code) > len(ts.suffix) && strings.HasSuffix(code, ts.suffix) {
			s := ts.scheme
			if s.style == styleSolana {
				s.Mint = splMints[code]
			}
			return s, true
		}
	}
	return Scheme{}, false
}

package metamask

import (
	"regexp"
	"strings"

	"github.com/hadron-labs/wallet-adapter-evm/pkg/logger"
	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
)

var androidMobileUA = regexp.MustCompile(`(?i)\bAndroid(?:.+)Mobile\b`)

// DeeplinkTargets returns the universal link and the custom scheme link opening href inside
// MetaMask Mobile.
//
//	https://dapp.example/page -> https://metamask.app.link/dapp/dapp.example/page
//	                          -> dapp://dapp.example/page
func DeeplinkTargets(href string, cfg DeeplinkConfig) (universal, custom string) {
	bare := stripScheme(href)

	return "https://" + cfg.UniversalHost + "/dapp/" + bare, cfg.Scheme + "://" + bare
}

// OpenWithDeeplink hands the current page over to MetaMask Mobile. Android browsers navigate to
// the custom scheme, which brings up the "open in app" chooser. Every other platform opens the
// universal link in a new browsing context.
func OpenWithDeeplink(w browser.Window, cfg DeeplinkConfig, lggr logger.Logger) {
	universal, custom := DeeplinkTargets(w.Location(), cfg)

	if androidMobileUA.MatchString(w.UserAgent()) {
		lggr.Debugw("Redirecting to MetaMask Mobile", "target", custom)
		w.Navigate(custom)

		return
	}

	lggr.Debugw("Opening MetaMask Mobile universal link", "target", universal)
	w.Open(universal, "_blank")
}

// stripScheme drops the "<scheme>:" prefix and the following "//" from href. It works on the
// raw string since location.href may carry escapes that url.Parse rejects.
func stripScheme(href string) string {
	if scheme, rest, ok := strings.Cut(href, ":"); ok && isScheme(scheme) {
		href = rest
	}

	return strings.TrimPrefix(href, "//")
}

// isScheme reports whether s is an RFC 3986 scheme token.
func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}

	return true
}

package metamask

import (
	"regexp"
	"strings"

	"github.com/mileusna/useragent"

	"github.com/hadron-labs/wallet-adapter-evm/wallet/browser"
)

// mobileAppUASuffix terminates the user agent of MetaMask Mobile's in-app browser.
const mobileAppUASuffix = "MetaMaskMobile"

// mobileUA catches handheld platforms the user agent parser does not flag.
var mobileUA = regexp.MustCompile(`(?i)\b(Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini)\b`)

// IsMobileBrowser reports whether userAgent belongs to a phone or tablet browser.
func IsMobileBrowser(userAgent string) bool {
	if userAgent == "" {
		return false
	}

	ua := useragent.Parse(userAgent)
	if ua.Mobile || ua.Tablet {
		return true
	}

	return mobileUA.MatchString(userAgent)
}

// IsMobileWebView reports whether the page runs inside MetaMask Mobile's own browser. Both the
// React Native bridge and the MetaMaskMobile user agent suffix are required, since other in-app
// browsers expose a similar bridge.
func IsMobileWebView(w browser.Window) bool {
	return w.HasReactNativeWebView() && strings.HasSuffix(w.UserAgent(), mobileAppUASuffix)
}

// outsideWalletOnMobile reports whether w is a mobile browser other than MetaMask's own.
func outsideWalletOnMobile(w browser.Window) bool {
	return IsMobileBrowser(w.UserAgent()) && !IsMobileWebView(w)
}

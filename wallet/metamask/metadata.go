package metamask

import (
	_ "embed"
	"encoding/base64"
)

const (
	// Name is the registered adapter name.
	Name = "Metamask"
	// URL is the wallet's homepage.
	URL = "https://metamask.io"
)

//go:embed icon.svg
var iconSVG []byte

// Icon returns the MetaMask logo as a data URI.
func Icon() string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(iconSVG)
}

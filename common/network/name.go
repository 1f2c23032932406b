package network

import (
	"strings"
)

//goland:noinspection GoNameStartsWithPackageName
const (
	NetworkTCP  = "tcp"
	NetworkUnix = "unix"
)

// NetworkName folds address-family variants ("tcp4", "tcp6") into their
// transport name.
//
//goland:noinspection GoNameStartsWithPackageName
func NetworkName(network string) string {
	if strings.HasPrefix(network, "tcp") {
		return NetworkTCP
	} else if network == "unix" {
		return NetworkUnix
	} else {
		return network
	}
}

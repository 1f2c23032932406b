// Package conn holds build information shared by the sing-conn commands.
package conn

var (
	Version    = "0.1.0"
	VersionStr = "sing-conn " + Version
)

//go:build debug

package conn

import (
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/sagernet/sing-conn/common/log"
)

// Debug builds expose pprof on SING_CONN_PPROF, default 127.0.0.1:8964.
func init() {
	listen := os.Getenv("SING_CONN_PPROF")
	if listen == "" {
		listen = "127.0.0.1:8964"
	}
	logger := log.NewLogger("pprof")
	go func() {
		err := http.ListenAndServe(listen, nil)
		if err != nil {
			logger.Warn(err)
		}
	}()
}

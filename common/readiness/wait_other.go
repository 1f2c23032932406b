//go:build !unix

package readiness

import (
	"context"
	"time"

	E "github.com/sagernet/sing-conn/common/exceptions"
)

func waitFD(ctx context.Context, fd int, slice time.Duration) error {
	return E.New("poll descriptor ", fd, ": unsupported on this platform")
}

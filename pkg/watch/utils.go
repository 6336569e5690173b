package watch

import (
	"errors"
	"io"
	"net"
	"strings"

	"github.com/gobwas/ws/wsutil"
)

// IsErrClosed checks for errors indicating a closed connection.
func IsErrClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.As(err, new(wsutil.ClosedError)) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || strings.Contains(err.Error(), "use of closed network connection")
}

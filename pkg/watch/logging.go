package watch

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/watch", "websocket watch endpoint")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

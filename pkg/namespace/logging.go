package namespace

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/namespace", "namespace tree")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

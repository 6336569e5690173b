package resolver

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/resolver", "class and instance resolution")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

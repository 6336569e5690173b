package service

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/service", "CIM repository http access")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

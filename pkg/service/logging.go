package service

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("service", "service life cycle")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

package database

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/database", "durable object store")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

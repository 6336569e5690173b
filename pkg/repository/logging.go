package repository

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("cim/repository", "CIM schema repository")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

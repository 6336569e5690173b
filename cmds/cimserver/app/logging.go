package app

import (
	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/logging/logrusl"
	"github.com/mandelsoft/logging/logrusr"
)

var REALM = logging.DefineRealm("cimserver", "CIM repository server")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

func init() {
	logcfg := logrusl.Human(true)
	logging.DefaultContext().SetBaseLogger(logrusr.New(logcfg.NewLogrus()))
}

// configureLogging sets the default level for the realms of the
// repository and additional levels for dedicated realm prefixes.
func configureLogging(ctx logging.Context, level string, realms map[string]string) error {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	for _, r := range []string{"cim", "cimserver", "server", "service", "healthz"} {
		ctx.AddRule(logging.NewConditionRule(l, logging.NewRealmPrefix(r)))
	}
	for r, lvl := range realms {
		l, err := logging.ParseLevel(lvl)
		if err != nil {
			return err
		}
		ctx.AddRule(logging.NewConditionRule(l, logging.NewRealmPrefix(r)))
	}
	return nil
}

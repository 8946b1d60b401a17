// Package autoload initializes the global logger from LOG_* environment
// variables when imported.
package autoload

import (
	configx "github.com/tanpawarit/contact-assistant/pkg/config"
	logx "github.com/tanpawarit/contact-assistant/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}

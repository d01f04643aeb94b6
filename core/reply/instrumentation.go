package reply

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/jimli1231/eletron-vrm/core/reply"

var logger = otelslog.NewLogger(scopeName)

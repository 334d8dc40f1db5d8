package ingress

import (
	"github.com/meraknet/merakd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("NGRT")

package bankingstage

import (
	"github.com/meraknet/merakd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BNKI")

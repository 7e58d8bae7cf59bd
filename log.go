package equiledger

import (
	"github.com/equiledger/equiledger/common"
)

var log = common.NewLog("equiledger")

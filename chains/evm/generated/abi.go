package generated

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

var (
	parseOnce sync.Once
	erc20ABI  abi.ABI
	routerABI abi.ABI
	parseErr  error
)

func parse() {
	erc20ABI, parseErr = abi.JSON(strings.NewReader(ERC20ABI))
	if parseErr != nil {
		parseErr = errors.Wrap(parseErr, "failed to parse token ABI")
		return
	}
	routerABI, parseErr = abi.JSON(strings.NewReader(StargateRouterABI))
	if parseErr != nil {
		parseErr = errors.Wrap(parseErr, "failed to parse router ABI")
	}
}

// ERC20 returns the parsed token ABI.
func ERC20() (abi.ABI, error) {
	parseOnce.Do(parse)
	return erc20ABI, parseErr
}

// Router returns the parsed router ABI.
func Router() (abi.ABI, error) {
	parseOnce.Do(parse)
	return routerABI, parseErr
}

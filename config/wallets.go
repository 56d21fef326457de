package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	commonerrors "github.com/ClipFinance/relay-cycler/common/errors"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/pkg/errors"
)

// LoadWallets reads one hex private key per line. Blank lines and lines starting with # are skipped.
// Errors name the offending line, never its content.
func LoadWallets(path string) ([]*types.Wallet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open wallets file")
	}
	defer f.Close()

	var wallets []*types.Wallet
	seen := make(map[string]int)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		s, err := signer.NewSignerFromHex(text)
		if err != nil {
			return nil, errors.Wrapf(commonerrors.ErrInvalidWallet, "line %d: not a private key", line)
		}

		addr := s.Address().Hex()
		if first, dup := seen[addr]; dup {
			return nil, errors.Wrapf(commonerrors.ErrInvalidWallet, "line %d: duplicates line %d", line, first)
		}
		seen[addr] = line

		wallets = append(wallets, types.NewWallet(s))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read wallets file")
	}

	if len(wallets) == 0 {
		return nil, errors.Wrap(commonerrors.ErrInvalidWallet, "wallets file is empty")
	}
	return wallets, nil
}

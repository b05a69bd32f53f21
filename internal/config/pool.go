package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"rewardVault/internal/vault"
)

// BuildSlots converts configured slot descriptors into pool slots.
func BuildSlots(slots []SlotConfig) ([]vault.AssetSlot, error) {
	out := make([]vault.AssetSlot, 0, len(slots))
	for i, sc := range slots {
		class, err := vault.ParseAssetClass(strings.TrimSpace(sc.Class))
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		token, err := ParseAddress(sc.Token)
		if err != nil {
			return nil, fmt.Errorf("slot %d token: %w", i, err)
		}
		quantity, err := parseAmount(sc.Quantity)
		if err != nil {
			return nil, fmt.Errorf("slot %d quantity: %w", i, err)
		}
		unitSize, err := parseAmount(sc.UnitSize)
		if err != nil {
			return nil, fmt.Errorf("slot %d unit size: %w", i, err)
		}

		slot := vault.AssetSlot{
			Class:     class,
			Token:     token,
			Remaining: quantity,
			UnitSize:  unitSize,
		}
		if strings.TrimSpace(sc.TokenID) != "" {
			id, err := parseAmount(sc.TokenID)
			if err != nil {
				return nil, fmt.Errorf("slot %d token id: %w", i, err)
			}
			slot.TokenID = id
		}
		out = append(out, slot)
	}
	return out, nil
}

// ParseAddress validates and normalizes a hex address string.
func ParseAddress(input string) (common.Address, error) {
	trimmed := strings.TrimSpace(input)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", input)
	}
	return common.HexToAddress(trimmed), nil
}

// ParseAddresses validates a list of hex address strings.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		addr, err := ParseAddress(input)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func parseAmount(input string) (*big.Int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("empty amount")
	}
	out, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", input)
	}
	return out, nil
}

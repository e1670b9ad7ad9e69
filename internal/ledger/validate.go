package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func validateEntry(t models.TransactionType, amount decimal.Decimal) error {
	if !t.Valid() {
		return ErrInvalidType
	}
	return calculator.ValidateAmount(amount)
}

func requireCategory(ctx context.Context, l storage.CategoryStore, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrUnknownCategory
	}
	_, err := l.GetCategory(ctx, id)
	return lookup(err, wrapf(ErrUnknownCategory, "%q", id))
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return c, nil
}

func checkUserTags(tags []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		switch tag {
		case models.TagTransfer, models.TagToFamily, models.TagFromFamily:
			return nil, ErrReservedTag
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}

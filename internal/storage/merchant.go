package storage

import "strings"

// collapseSpace trims s and folds every whitespace run to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeTransactionMerchant prefers the raw merchant text and falls back
// to the description.
func normalizeTransactionMerchant(rawText, description string) string {
	if raw := collapseSpace(rawText); raw != "" {
		return raw
	}
	return collapseSpace(description)
}

// normalizeInternalTransferMerchant renders a transfer between two of the
// user's own accounts as "Internal: from -> to". Direction comes from the
// amount sign, or from Up's "Transfer from/to" wording when the transfer
// account is unknown.
func normalizeInternalTransferMerchant(
	accountName string,
	transferAccountName string,
	amountValueInBaseUnits int64,
	rawText string,
	description string,
) (string, bool) {
	account := collapseSpace(accountName)
	transfer := collapseSpace(transferAccountName)

	if account != "" && transfer != "" {
		switch {
		case amountValueInBaseUnits < 0:
			return internalFlow(account, transfer), true
		case amountValueInBaseUnits > 0:
			return internalFlow(transfer, account), true
		}
	}
	if account == "" {
		return "", false
	}

	candidate := normalizeTransactionMerchant(rawText, description)
	if other, ok := cutPrefixFold(candidate, "transfer from "); ok {
		return internalFlow(other, account), true
	}
	if other, ok := cutPrefixFold(candidate, "transfer to "); ok {
		return internalFlow(account, other), true
	}
	return "", false
}

func internalFlow(from, to string) string {
	return "Internal: " + from + " -> " + to
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	rest := collapseSpace(s[len(prefix):])
	return rest, rest != ""
}

package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const defaultDBKeyUser = "db_key"

// LoadDBKey returns the local database encryption key. found is false when no
// key has been stored yet.
func LoadDBKey() (key string, found bool, err error) {
	service, account := dbKeyringItem()

	secret, err := keyringGet(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf(
			"failed to read keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}

	secret = strings.TrimSpace(secret)
	return secret, secret != "", nil
}

func SaveDBKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return errors.New("db key cannot be empty")
	}

	service, account := dbKeyringItem()
	if err := keyringSet(service, account, trimmed); err != nil {
		return fmt.Errorf(
			"failed to store keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}
	return nil
}

func dbKeyringItem() (service, account string) {
	return envOrDefault("LEDGERLINE_KEYCHAIN_SERVICE", defaultSecretService),
		envOrDefault("LEDGERLINE_DB_KEY_ACCOUNT", defaultDBKeyUser)
}

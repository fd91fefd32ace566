package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	defaultSecretService = "ledgerline"
	defaultSecretUser    = "up_pat"
)

var (
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
)

// LoadPAT loads the Up Personal Access Token.
//
// Order of precedence:
// 1) UP_PAT environment variable.
// 2) System keyring item referenced by service/account.
func LoadPAT() (string, error) {
	if pat := strings.TrimSpace(os.Getenv("UP_PAT")); pat != "" {
		return pat, nil
	}

	pat, err := loadFromKeyring()
	if err != nil {
		return "", err
	}

	if pat == "" {
		return "", errors.New("up PAT is empty")
	}

	return pat, nil
}

// SavePAT stores the Up PAT in the system credential store.
func SavePAT(pat string) error {
	trimmed := strings.TrimSpace(pat)
	if trimmed == "" {
		return errors.New("up PAT cannot be empty")
	}

	service, account := patKeyringItem()
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

// RemovePAT deletes the stored PAT. A missing item is not an error.
func RemovePAT() error {
	service, account := patKeyringItem()
	if err := keyringDelete(service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf(
			"failed to delete keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}
	return nil
}

// HasStoredPAT reports whether a non-empty PAT is available from the
// environment or the keyring.
func HasStoredPAT() bool {
	if strings.TrimSpace(os.Getenv("UP_PAT")) != "" {
		return true
	}
	pat, err := loadFromKeyring()
	return err == nil && pat != ""
}

func loadFromKeyring() (string, error) {
	service, account := patKeyringItem()

	secret, err := keyringGet(service, account)
	if err != nil {
		return "", fmt.Errorf(
			"failed to read keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}

	return strings.TrimSpace(secret), nil
}

func patKeyringItem() (service, account string) {
	return envOrDefault("LEDGERLINE_KEYCHAIN_SERVICE", defaultSecretService),
		envOrDefault("LEDGERLINE_KEYCHAIN_ACCOUNT", defaultSecretUser)
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

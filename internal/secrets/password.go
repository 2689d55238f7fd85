package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"bidscout-engine/internal/domain"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "bidscout"
)

var ErrNoPassword = errors.New("platform password not found in keychain")

// Account is the keychain account name for a platform login.
func Account(platform domain.Platform, username string) string {
	return fmt.Sprintf("bidscout:%s:%s", platform, strings.ToLower(strings.TrimSpace(username)))
}

func GetPassword(platform domain.Platform, username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("username is empty")
	}
	pw, err := keyring.Get(KeyringService, Account(platform, username))
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("read keychain: %w", err)
	}
	return "", ErrNoPassword
}

func SetPassword(platform domain.Platform, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, Account(platform, username), password)
}

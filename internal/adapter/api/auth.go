package api

import (
	"os"

	"github.com/mmcdole/anbar/internal/domain"
)

// InitDataHeader carries the Telegram WebApp init data to the backend
const InitDataHeader = "X-Telegram-Init-Data"

// StaticInitData returns a provider that always yields token
func StaticInitData(token string) domain.InitDataProvider {
	return func() string { return token }
}

// EnvInitData returns a provider that reads the token from an environment
// variable on every call, so a refreshed token is picked up without restart
func EnvInitData(name string) domain.InitDataProvider {
	return func() string { return os.Getenv(name) }
}

// FirstInitData returns the first non-empty token among providers
func FirstInitData(providers ...domain.InitDataProvider) domain.InitDataProvider {
	return func() string {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if token := p(); token != "" {
				return token
			}
		}
		return ""
	}
}

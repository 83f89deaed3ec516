package service

import (
	"context"
	"errors"
	"fmt"

	"matchstats/internal/logging"
	"matchstats/internal/riot"
)

// PlayerIdentifier names a player by exactly one of: a puuid, a Riot ID
// (GameName + TagLine), or the email of a registered account.
type PlayerIdentifier struct {
	PUUID    string
	GameName string
	TagLine  string
	Email    string
}

func (p PlayerIdentifier) String() string {
	switch {
	case p.PUUID != "":
		return "puuid:" + p.PUUID
	case p.Email != "":
		return "email:" + p.Email
	default:
		return p.GameName + "#" + p.TagLine
	}
}

// AccountSource looks up a Riot account by Riot ID.
type AccountSource interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error)
}

// AccountDirectory maps a registered account email to its Riot ID.
type AccountDirectory interface {
	RiotIDByEmail(ctx context.Context, email string) (gameName, tagLine string, found bool, err error)
}

// PUUIDCache remembers Riot ID to puuid lookups.
type PUUIDCache interface {
	Get(ctx context.Context, gameName, tagLine string) (string, bool, error)
	Set(ctx context.Context, gameName, tagLine, puuid string) error
}

// AccountResolver resolves a PlayerIdentifier to a puuid.
type AccountResolver struct {
	accounts  AccountSource
	directory AccountDirectory
	cache     PUUIDCache
}

// NewAccountResolver builds a resolver. directory and cache may be nil: email
// identifiers are then rejected and every Riot ID lookup goes to the API.
func NewAccountResolver(accounts AccountSource, directory AccountDirectory, cache PUUIDCache) *AccountResolver {
	return &AccountResolver{accounts: accounts, directory: directory, cache: cache}
}

// ResolvePUUID returns the player's puuid, or an error matching ErrPlayerNotFound.
func (r *AccountResolver) ResolvePUUID(ctx context.Context, id PlayerIdentifier) (string, error) {
	if id.PUUID != "" {
		return id.PUUID, nil
	}

	gameName, tagLine := id.GameName, id.TagLine
	if id.Email != "" {
		if r.directory == nil {
			return "", fmt.Errorf("%w: email lookup is not configured", ErrPlayerNotFound)
		}
		name, tag, found, err := r.directory.RiotIDByEmail(ctx, id.Email)
		if err != nil {
			return "", fmt.Errorf("lookup account %s: %w", id.Email, err)
		}
		if !found {
			return "", fmt.Errorf("%w: no account for %s", ErrPlayerNotFound, id.Email)
		}
		gameName, tagLine = name, tag
	}

	if gameName == "" || tagLine == "" {
		return "", fmt.Errorf("%w: incomplete riot id %q", ErrPlayerNotFound, gameName+"#"+tagLine)
	}

	return r.resolveRiotID(ctx, gameName, tagLine)
}

func (r *AccountResolver) resolveRiotID(ctx context.Context, gameName, tagLine string) (string, error) {
	logger := logging.Logger()

	if r.cache != nil {
		puuid, ok, err := r.cache.Get(ctx, gameName, tagLine)
		if err != nil {
			logger.Warnf("puuid cache read failed for %s#%s: %v", gameName, tagLine, err)
		} else if ok {
			return puuid, nil
		}
	}

	account, err := r.accounts.GetAccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return "", fmt.Errorf("%w: %s#%s", ErrPlayerNotFound, gameName, tagLine)
		}
		return "", fmt.Errorf("get account %s#%s: %w", gameName, tagLine, err)
	}
	if account.PUUID == "" {
		return "", fmt.Errorf("%w: %s#%s has no puuid", ErrPlayerNotFound, gameName, tagLine)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, gameName, tagLine, account.PUUID); err != nil {
			logger.Warnf("puuid cache write failed for %s#%s: %v", gameName, tagLine, err)
		}
	}

	return account.PUUID, nil
}

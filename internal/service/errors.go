package service

import "errors"

var (
	// ErrPlayerNotFound means the identifier could not be resolved to a puuid.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrMatchDataUnavailable means the remote source has no match history for the player.
	ErrMatchDataUnavailable = errors.New("match data unavailable")

	// ErrInterrupted means the request was cancelled while matches were being fetched.
	ErrInterrupted = errors.New("interrupted while fetching matches")
)

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AuthSessionKey returns the cache key holding the account ID of a live login session.
func (r *CacheKeyStruct) AuthSessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// SolveExamKey returns the cache key for the exam a session is currently solving.
func (r *CacheKeyStruct) SolveExamKey(sessionID string) string {
	return fmt.Sprintf("solve:%s:exam", sessionID)
}

// SolveAnsweredKey returns the cache key for the answers saved by a session.
func (r *CacheKeyStruct) SolveAnsweredKey(sessionID string) string {
	return fmt.Sprintf("solve:%s:answered", sessionID)
}

var CacheKey = NewCacheKeyStruct()

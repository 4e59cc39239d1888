package config

import "time"

type LinkConfig interface {
	GetLinkSecret() string
	GetLinkTTL() time.Duration
}

type Link struct{}

var _ LinkConfig = Link{}

func (Link) GetLinkSecret() string {
	return GetEnv("PUBLIC_LINK_SECRET", "")
}

func (Link) GetLinkTTL() time.Duration {
	return GetEnvDuration("PUBLIC_LINK_TTL", 30*24*time.Hour)
}

package internal

import (
	"netmigration/widcollector/internal/browser"
	"netmigration/widcollector/services/cache"
	"netmigration/widcollector/services/publisher"
)

// Dependencies holds all service dependencies. Nil members are optional
// services that are switched off.
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Launcher  browser.Launcher
}

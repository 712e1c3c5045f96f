package instance

import "github.com/boutiquenoire/storefront-backend/pkg/env"

// ID names this process in logs. WORKER_ID wins over the platform-provided
// DYNO; without either the service name is suffixed with "local".
func ID(service string) string {
	if id, ok := env.First("WORKER_ID", "DYNO"); ok {
		return id
	}
	return service + "-local"
}

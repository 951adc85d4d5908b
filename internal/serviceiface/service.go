package serviceiface

// Service is the contract every managed service (logger, weighbridge, tenant,
// gateway, cron) implements so the app manager can sequence start/stop.
type Service interface {
	Name() string
	Start() error
	Stop() error
}

package registry

// Service is anything the agent starts at boot and stops on shutdown.
type Service interface {
	Start() error
	Stop() error
}

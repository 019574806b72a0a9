package grpcapp

// Config is the gRPC section of an application's configuration. Port 0 asks
// the operating system for an ephemeral port; the bound port is available
// through Application.Port once started.
type Config struct {
	Port int `config:"port" validate:"min=0,max=65535"`
}

// ConfigProvider constrains application config types usable with a gRPC
// application: the config must expose a gRPC section.
type ConfigProvider interface {
	GrpcConfig() Config
}

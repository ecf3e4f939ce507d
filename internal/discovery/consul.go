package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/bookstore/internal/config"
)

// Agent is the part of the Consul agent API used for registration.
type Agent interface {
	ServiceRegister(reg *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

type ConsulClient struct {
	agent  Agent
	logger zerolog.Logger
}

func NewConsulClient(cfg config.ConsulConfig, logger zerolog.Logger) (*ConsulClient, error) {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	// Test connection
	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	logger.Info().Str("addr", apiCfg.Address).Msg("✅ Connected to Consul")

	return NewConsulClientWithAgent(client.Agent(), logger), nil
}

func NewConsulClientWithAgent(agent Agent, logger zerolog.Logger) *ConsulClient {
	return &ConsulClient{agent: agent, logger: logger}
}

// getOutboundIP gets the preferred outbound IP of this machine
func getOutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

// Registration builds the service entry with an HTTP check on /health.
func Registration(cfg config.ConsulConfig, hostIP string, port int) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      cfg.ServiceID,
		Name:    cfg.ServiceName,
		Port:    port,
		Address: hostIP,
		Tags:    []string{"bookstore", "http"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(hostIP, strconv.Itoa(port))),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register registers this instance with Consul
func (c *ConsulClient) Register(cfg config.ConsulConfig, port int) error {
	reg := Registration(cfg, getOutboundIP(), port)

	if err := c.agent.ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	c.logger.Info().
		Str("service", reg.Name).
		Str("id", reg.ID).
		Str("address", reg.Address).
		Int("port", reg.Port).
		Msg("✅ Registered service")
	return nil
}

// Deregister removes a service from Consul
func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.agent.ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	c.logger.Info().Str("id", serviceID).Msg("✅ Deregistered service")
	return nil
}

// PortFromAddr extracts the numeric port of a listen address like ":8080".
func PortFromAddr(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return port, nil
}

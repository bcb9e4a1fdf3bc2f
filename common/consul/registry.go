package consul

import (
	"errors"
	"net"
	"os"
	"strconv"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	consul "github.com/hashicorp/consul/api"
)

const (
	// NetworkEnvironmentVariable names the environment variable holding the CIDR of the network on which
	// the matchmaker should be reachable.
	NetworkEnvironmentVariable = "MATCHMAKER_NETWORK"
)

var (
	ErrNoLocalIP = errors.New("registry: can not find local ip")
)

// NewClient returns a new Client with connection to consul
func NewClient(addr string) (*Client, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	c, err := consul.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	cli := &Client{Client: c}
	config.InitLogger(&cli.log, "Consul ")

	return cli, nil
}

// Client registers the matchmaker with Consul.
type Client struct {
	*consul.Client

	log logger.Logger
}

// getLocalIP returns the address within the network named by NetworkEnvironmentVariable, or the first
// non-loopback IPv4 address if there is no such network.
func (c *Client) getLocalIP() (string, error) {
	var ips []net.IP

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return c.selectIP(ips, os.Getenv(NetworkEnvironmentVariable))
}

func (c *Client) selectIP(ips []net.IP, network string) (string, error) {
	if len(ips) == 0 {
		return "", ErrNoLocalIP
	}

	// only one network device existed
	if len(ips) == 1 || network == "" {
		return ips[0].String(), nil
	}

	_, ipNet, err := net.ParseCIDR(network)
	if err != nil {
		c.log.Error("An invalid network CIDR is set in environment %s: %v", NetworkEnvironmentVariable, network)
		return ips[0].String(), nil
	}

	for _, ip := range ips {
		if ipNet.Contains(ip) {
			c.log.Info("Traffic is routed to the dedicated network %s", ip.String())
			return ip.String(), nil
		}
	}

	return ips[0].String(), nil
}

// Register a service with registry
func (c *Client) Register(name string, id string, ip string, port int) error {
	if ip == "" {
		var err error
		ip, err = c.getLocalIP()
		if err != nil {
			return err
		}
	}

	reg := &consul.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Port:    port,
		Address: ip,
		Check: &consul.AgentServiceCheck{
			HTTP:                           "http://" + net.JoinHostPort(ip, strconv.Itoa(port)) + "/healthz",
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	c.log.Info("Trying to register service [ name: %s, id: %s, address: %s:%d ]", name, id, ip, port)
	return c.Agent().ServiceRegister(reg)
}

// Deregister removes the service address from registry
func (c *Client) Deregister(id string) error {
	return c.Agent().ServiceDeregister(id)
}

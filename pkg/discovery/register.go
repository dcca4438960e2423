package discovery

import (
	"fmt"
	"net"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog/log"
)

// Registration is what Deregister needs to undo RegisterService.
type Registration struct {
	client *api.Client
	id     string
}

// RegisterService 将 HTTP 服务注册到 Consul, 健康检查走 healthPath
func RegisterService(serviceName string, servicePort int, consulAddr, healthPath string) (*Registration, error) {
	config := api.DefaultConfig()
	config.Address = consulAddr
	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	localIP, err := getOutboundIP()
	if err != nil {
		return nil, err
	}

	serviceID := fmt.Sprintf("%s-%s-%d", serviceName, localIP, servicePort)

	registration := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    serviceName,
		Port:    servicePort,
		Address: localIP,
		Tags:    []string{"grocery", "http"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", localIP, servicePort, healthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	log.Info().Str("service", serviceName).Str("id", serviceID).Str("addr", fmt.Sprintf("%s:%d", localIP, servicePort)).Msg("service registered in consul")
	return &Registration{client: client, id: serviceID}, nil
}

func (r *Registration) Deregister() error {
	if r == nil {
		return nil
	}
	return r.client.Agent().ServiceDeregister(r.id)
}

// getOutboundIP 获取本机对外 IP; 容器内不能注册 127.0.0.1
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

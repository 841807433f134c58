package reconcile

import (
	"strconv"
	"strings"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// srvName produces the fully qualified SRV record name for the configured service.
func srvName(service string, domain string) string {
	return dns.Fqdn("_" + service + "._tcp." + strings.Trim(domain, "."))
}

// resolveEndpoint determines the base URL of the remote API. When discovery is
// disabled this is the configured endpoint; otherwise the host and port are
// looked up via a DNS SRV query.
func resolveEndpoint(cfg *Config) (string, error) {
	if !cfg.HTTP.Discovery.Enabled {
		return cfg.HTTP.Endpoint, nil
	}

	client := &dns.Client{
		Timeout: cfg.HTTP.Discovery.Timeout,
	}

	msg := new(dns.Msg)
	msg.SetQuestion(srvName(cfg.HTTP.Discovery.Service, cfg.HTTP.Discovery.Domain), dns.TypeSRV)

	rx, _, err := client.Exchange(msg, cfg.HTTP.Discovery.Server)
	if err != nil {
		return "", errors.Wrap(err, "dns request failed")
	}

	for _, rr := range rx.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}

		scheme := "http"
		if cfg.HTTP.TLS.Enabled {
			scheme = "https"
		}

		host := strings.TrimSuffix(srv.Target, ".")
		path := "/" + strings.Trim(cfg.HTTP.Discovery.Path, "/")

		return scheme + "://" + host + ":" + strconv.Itoa(int(srv.Port)) + path, nil
	}

	return "", errors.Errorf("no SRV records found for service: %s", cfg.HTTP.Discovery.Service)
}

package reconcile

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/opsforge/state-reconciler/pkg/types"
)

const (
	// StatePresent declares that a resource must exist and satisfy its desired representation.
	StatePresent string = "present"
	// StateAbsent declares that a resource must not exist.
	StateAbsent string = "absent"

	// ActionNone means the remote state already satisfied the resource declaration.
	ActionNone string = "none"
	// ActionCreate means the resource was missing and had to be created.
	ActionCreate string = "create"
	// ActionUpdate means the resource existed but drifted from its desired representation.
	ActionUpdate string = "update"
	// ActionDelete means the resource existed but was declared absent.
	ActionDelete string = "delete"
)

type (
	// Reconciler drives remote resources towards their declared state.
	Reconciler struct {
		// Reconciler configuration.
		Config *Config
		// Reconciler logger.
		Logger types.Logger
		// Resource declaration validator.
		Validator *validator.Validate
		// Reconciler backend.
		Backend Backend
	}

	// Config represents the main reconciler configuration.
	Config struct {
		// Backend type.
		// Currently supported: http, etcd.
		Backend string `mapstructure:"backend" default:"http"`
		// HTTP backend configuration.
		HTTP struct {
			// Base URL of the remote REST API.
			Endpoint string `mapstructure:"endpoint" default:"http://127.0.0.1:8080/api"`
			// Bearer token attached to every request.
			Token string `mapstructure:"token" default:""`
			// Network timeout for API requests.
			Timeout time.Duration `mapstructure:"timeout" default:"30s"`
			// DNS-based endpoint discovery configuration.
			Discovery struct {
				// Enable SRV-based endpoint discovery.
				Enabled bool `mapstructure:"enabled" default:"false"`
				// SRV service name, without the leading underscore.
				Service string `mapstructure:"service" default:"state-reconciler"`
				// Domain the SRV record belongs to.
				Domain string `mapstructure:"domain" default:"server.local."`
				// DNS server address.
				Server string `mapstructure:"server" default:"127.0.0.1:53"`
				// Network timeout for DNS requests.
				Timeout time.Duration `mapstructure:"timeout" default:"30s"`
				// Path appended to the discovered host and port.
				Path string `mapstructure:"path" default:"/api"`
			} `mapstructure:"discovery"`
			// HTTP backend TLS configuration.
			TLS TLSOptions `mapstructure:"tls"`
		} `mapstructure:"http"`
		// Etcd backend configuration.
		Etcd struct {
			// Etcd cluster endpoints.
			Endpoints []string `mapstructure:"endpoints" default:"[\"127.0.0.1:2379\"]"`
			// Network timeout for etcd requests.
			Timeout time.Duration `mapstructure:"timeout" default:"30s"`
			// Etcd k/v path prefix.
			Prefix string `mapstructure:"prefix" default:"STATE_RECONCILER"`
			// Etcd authentication configuration.
			Auth struct {
				// Username for authentication.
				Username string `mapstructure:"username" default:""`
				// Password for authentication.
				Password string `mapstructure:"password" default:""`
			} `mapstructure:"auth"`
			// Etcd TLS configuration.
			TLS TLSOptions `mapstructure:"tls"`
		} `mapstructure:"etcd"`
		// Reconciliation behavior configuration.
		Reconcile struct {
			// Compute results without calling any mutating endpoint.
			CheckMode bool `mapstructure:"checkmode" default:"false"`
			// Keys ignored during comparison at every nesting depth,
			// merged with every resource's own exclusion list.
			Exclude []string `mapstructure:"exclude" default:"[]"`
			// Allow deletion of resources declared absent.
			AllowDelete bool `mapstructure:"allowdelete" default:"true"`
		} `mapstructure:"reconcile"`
		// Reconciler logger.
		Logger types.Logger `mapstructure:"-"`
	}

	// TLSOptions represents the TLS configuration shared by all backends.
	TLSOptions struct {
		// Enable TLS.
		Enabled bool `mapstructure:"enabled" default:"false"`
		// Skip verification of the server's certificate chain and host name.
		Insecure bool `mapstructure:"insecure" default:"false"`
		// Trusted CA bundle.
		CA struct {
			Path string `mapstructure:"path" default:""`
			PEM  string `mapstructure:"pem" default:""`
		} `mapstructure:"ca"`
		// Client certificate.
		Certificate struct {
			Path string `mapstructure:"path" default:""`
			PEM  string `mapstructure:"pem" default:""`
		} `mapstructure:"certificate"`
		// Client private key.
		Key struct {
			Path string `mapstructure:"path" default:""`
			PEM  string `mapstructure:"pem" default:""`
		} `mapstructure:"key"`
	}

	// Provider reads the current representations of remote resources.
	Provider interface {
		// Get returns the current representation of a resource or nil if it does not exist.
		Get(id string) (map[string]interface{}, error)
		// List returns the representations of all resources of a kind.
		List(kind string) ([]map[string]interface{}, error)
	}

	// Mutator applies resource representations to the remote system.
	Mutator interface {
		// Create creates a resource and returns its resulting representation.
		Create(id string, repr map[string]interface{}) (map[string]interface{}, error)
		// Update updates a resource and returns its resulting representation.
		Update(id string, repr map[string]interface{}) (map[string]interface{}, error)
		// Delete deletes a resource.
		Delete(id string) error
	}

	// Backend provides an interface for all supported remote state backends.
	Backend interface {
		Provider
		Mutator
		// Close closes backend clients and performs other housekeeping.
		Close()
	}

	// Resource represents a single declared resource.
	Resource struct {
		// Resource kind, a path segment identifying the remote collection.
		Kind string `yaml:"kind" validate:"required,notblank,ident"`
		// Resource name, unique within its kind.
		Name string `yaml:"name" validate:"required,notblank,ident"`
		// Declared state of the resource.
		// Allowed values: 'present', 'absent'.
		State string `yaml:"state" default:"present" validate:"required,oneof=present absent"`
		// Desired partial representation of the resource.
		Desired map[string]interface{} `yaml:"desired"`
		// Keys ignored during comparison for this resource only.
		Exclude []string `yaml:"exclude"`
	}

	// Result represents the outcome of reconciling a single resource.
	Result struct {
		// Resource identifier.
		Resource string `json:"resource" yaml:"resource"`
		// Action taken (or, in check mode, the action that would be taken).
		Action string `json:"action" yaml:"action"`
		// Whether the remote state differed from the declared state.
		Changed bool `json:"changed" yaml:"changed"`
		// Top-level desired keys that were not satisfied by the remote state.
		Drift []string `json:"drift,omitempty" yaml:"drift,omitempty"`
	}
)

// ID returns the resource identifier used by backends.
func (r *Resource) ID() string {
	return r.Kind + "/" + r.Name
}

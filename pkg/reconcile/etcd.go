package reconcile

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.etcd.io/etcd/api/v3/mvccpb"
	etcdv3 "go.etcd.io/etcd/client/v3"
	etcdns "go.etcd.io/etcd/client/v3/namespace"

	"github.com/opsforge/state-reconciler/pkg/types"
)

const (
	// Etcd backend type.
	EtcdBackendType string = "etcd"
)

type (
	// EtcdBackend implements an etcd-based backend. Resource representations
	// are stored as JSON values under '<prefix>/<kind>/<name>'.
	EtcdBackend struct {
		// Reconciler configuration.
		Config *Config
		// Reconciler logger.
		Logger types.Logger
		// Etcd client.
		Client *etcdv3.Client
	}
)

// decodeKV unmarshals a single k/v pair into a resource representation.
func (e *EtcdBackend) decodeKV(kv *mvccpb.KeyValue) (map[string]interface{}, error) {
	repr := make(map[string]interface{})

	if err := json.Unmarshal(kv.Value, &repr); err != nil {
		return nil, errors.Wrapf(err, "[%s] representation decoding failure", string(kv.Key))
	}

	return repr, nil
}

// Get returns the current representation of a resource or nil if it does not exist.
func (e *EtcdBackend) Get(id string) (map[string]interface{}, error) {
	cfg := e.Config

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Etcd.Timeout)
	resp, err := e.Client.Get(ctx, id)
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "etcd request failure")
	}

	if len(resp.Kvs) == 0 {
		return nil, nil
	}

	return e.decodeKV(resp.Kvs[0])
}

// List returns the representations of all resources of a kind.
func (e *EtcdBackend) List(kind string) ([]map[string]interface{}, error) {
	cfg := e.Config
	log := e.Logger
	reprs := make([]map[string]interface{}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Etcd.Timeout)
	resp, err := e.Client.Get(ctx, kind+"/", etcdv3.WithPrefix())
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "etcd request failure")
	}

	for _, kv := range resp.Kvs {
		repr, err := e.decodeKV(kv)
		if err != nil {
			log.Warnf("skipping resource record: %v", err)
			continue
		}

		reprs = append(reprs, repr)
	}

	return reprs, nil
}

// put writes a resource representation to etcd.
func (e *EtcdBackend) put(id string, repr map[string]interface{}) error {
	cfg := e.Config

	value, err := json.Marshal(repr)
	if err != nil {
		return errors.Wrap(err, "representation encoding failure")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Etcd.Timeout)
	_, err = e.Client.Put(ctx, id, string(value))
	cancel()
	if err != nil {
		return errors.Wrap(err, "etcd request failure")
	}

	return nil
}

// Create creates a resource and returns its resulting representation.
func (e *EtcdBackend) Create(id string, repr map[string]interface{}) (map[string]interface{}, error) {
	if err := e.put(id, repr); err != nil {
		return nil, err
	}

	return repr, nil
}

// Update updates a resource and returns its resulting representation.
func (e *EtcdBackend) Update(id string, repr map[string]interface{}) (map[string]interface{}, error) {
	if err := e.put(id, repr); err != nil {
		return nil, err
	}

	return repr, nil
}

// Delete deletes a resource.
func (e *EtcdBackend) Delete(id string) error {
	cfg := e.Config

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Etcd.Timeout)
	_, err := e.Client.Delete(ctx, id)
	cancel()
	if err != nil {
		return errors.Wrap(err, "etcd request failure")
	}

	return nil
}

// Close shuts down the backend and performs other housekeeping.
func (e *EtcdBackend) Close() {
	e.Client.Close()
}

// NewEtcdBackend creates an etcd backend.
func NewEtcdBackend(cfg *Config) (*EtcdBackend, error) {
	clientCfg := etcdv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: cfg.Etcd.Timeout,
		Username:    cfg.Etcd.Auth.Username,
		Password:    cfg.Etcd.Auth.Password,
	}

	if cfg.Etcd.TLS.Enabled {
		tlsCfg, err := tlsSetup(&cfg.Etcd.TLS)
		if err != nil {
			return nil, errors.Wrap(err, "etcd backend TLS initialization failure")
		}

		clientCfg.TLS = tlsCfg
	}

	c, err := etcdv3.New(clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "etcd backend initialization failure")
	}

	// Set etcd namespace.
	ns := cfg.Etcd.Prefix
	c.KV = etcdns.NewKV(c.KV, ns+"/")
	c.Watcher = etcdns.NewWatcher(c.Watcher, ns+"/")
	c.Lease = etcdns.NewLease(c.Lease, ns+"/")

	return &EtcdBackend{
		Config: cfg,
		Logger: cfg.Logger,
		Client: c,
	}, nil
}

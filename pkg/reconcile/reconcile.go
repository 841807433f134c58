package reconcile

import (
	"regexp"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"

	"github.com/opsforge/state-reconciler/internal/logger"
	"github.com/opsforge/state-reconciler/pkg/match"
)

const srcIdentRegexString = "^[A-Za-z0-9][A-Za-z0-9\\-\\_\\.]*$"

var srcIdentRegex = regexp.MustCompile(srcIdentRegexString)

// isIdent validates if the field's value is a valid resource kind or name.
func isIdent(fl validator.FieldLevel) bool {
	return srcIdentRegex.MatchString(fl.Field().String())
}

// exclusions merges the global exclusion list with a resource's own exclusions
// and the names of desired keys the caller left unset.
func (r *Reconciler) exclusions(res *Resource) match.Exclusions {
	exclude := match.NewExclusions(r.Config.Reconcile.Exclude...)
	exclude = exclude.Merge(match.NewExclusions(res.Exclude...))

	return exclude.Merge(match.NewExclusions(match.NilKeys(res.Desired)...))
}

// Reconcile drives a single resource towards its declared state and reports
// the action taken. In check mode the decision is made but no mutating call
// is issued.
func (r *Reconciler) Reconcile(res *Resource) (*Result, error) {
	cfg := r.Config
	log := r.Logger

	if err := defaults.Set(res); err != nil {
		return nil, errors.Wrap(err, "resource defaults initialization failure")
	}

	if err := r.Validator.Struct(res); err != nil {
		return nil, errors.Wrap(err, "resource validation error")
	}

	id := res.ID()
	exclude := r.exclusions(res)

	actual, err := r.Backend.Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] state retrieval failure", id)
	}

	result := &Result{
		Resource: id,
		Action:   ActionNone,
	}

	if res.State == StateAbsent {
		if actual == nil {
			return result, nil
		}

		if !cfg.Reconcile.AllowDelete {
			log.Warnf("[%s] resource is declared absent but deletion is disabled", id)
			return result, nil
		}

		result.Action = ActionDelete
		result.Changed = true

		if !cfg.Reconcile.CheckMode {
			if err := r.Backend.Delete(id); err != nil {
				return nil, errors.Wrapf(err, "[%s] deletion failure", id)
			}
		}

		return result, nil
	}

	if actual == nil {
		result.Action = ActionCreate
		result.Changed = true
		result.Drift = match.Diff(res.Desired, map[string]interface{}{}, exclude)

		if !cfg.Reconcile.CheckMode {
			if _, err := r.Backend.Create(id, res.Desired); err != nil {
				return nil, errors.Wrapf(err, "[%s] creation failure", id)
			}
		}

		return result, nil
	}

	if match.IsSubset(res.Desired, actual, exclude) {
		log.Debugf("[%s] remote state already satisfies the declaration", id)
		return result, nil
	}

	result.Action = ActionUpdate
	result.Changed = true
	result.Drift = match.Diff(res.Desired, actual, exclude)

	if !cfg.Reconcile.CheckMode {
		if _, err := r.Backend.Update(id, res.Desired); err != nil {
			return nil, errors.Wrapf(err, "[%s] update failure", id)
		}
	}

	return result, nil
}

// ReconcileAll reconciles a list of resources sequentially and collects the results.
func (r *Reconciler) ReconcileAll(resources []*Resource) ([]*Result, error) {
	results := make([]*Result, 0, len(resources))

	for _, res := range resources {
		result, err := r.Reconcile(res)
		if err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

// Close shuts down the reconciler's backend.
func (r *Reconciler) Close() {
	r.Backend.Close()
}

// New creates an instance of the reconciler with user-supplied configuration.
func New(cfg *Config) (*Reconciler, error) {
	// Initialize logger.
	if cfg.Logger == nil {
		l, err := logger.New("info")
		if err != nil {
			return nil, errors.Wrap(err, "logger initialization failure")
		}
		cfg.Logger = l
	}

	// Initialize backend.
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "backend initialization failure")
	}

	// Initialize struct validator.
	validator := validator.New()
	validator.RegisterValidation("notblank", validators.NotBlank)
	validator.RegisterValidation("ident", isIdent)

	r := &Reconciler{
		Config:    cfg,
		Logger:    cfg.Logger,
		Validator: validator,

		Backend: backend,
	}

	return r, nil
}

// NewDefault creates an instance of the reconciler with the default configuration.
func NewDefault() (*Reconciler, error) {
	cfg := &Config{}

	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "defaults initialization failure")
	}

	return New(cfg)
}

package wizard

// Option configures a Builder, Restorer or Wizard.
type Option func(*config)

type config struct {
	logger    Logger
	enums     EnumerationProvider
	evaluator Evaluator
	registry  *Registry
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.enums == nil {
		cfg.enums = StaticEnumerations{}
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}
	return cfg
}

// WithEnumerations supplies the known members consulted by enum fields. Without
// it every non-empty enum value restores into the custom slot.
func WithEnumerations(provider EnumerationProvider) Option {
	return func(cfg *config) {
		cfg.enums = provider
	}
}

// WithEvaluator selects the engine used to compile inclusion rules. A nil
// evaluator keeps the expr default.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithRegistry replaces the codec registry.
func WithRegistry(registry *Registry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// WithCodec overrides the codec for a single kind on top of the current registry.
func WithCodec(kind FieldKind, codec Codec) Option {
	return func(cfg *config) {
		if codec == nil {
			return
		}
		if cfg.registry == nil {
			cfg.registry = DefaultRegistry()
		} else {
			cfg.registry = cfg.registry.Clone()
		}
		cfg.registry.set(kind, codec)
	}
}

func (cfg config) evaluatorOrDefault() Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	return NewExprEvaluator()
}

package validator

type Options struct {
	skipMempoolCheck bool
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

func NewDefaultOptions() *Options {
	return &Options{
		skipMempoolCheck: false,
	}
}

func ProcessOptions(opts ...Option) *Options {
	options := NewDefaultOptions()
	for _, o := range opts {
		o(options)
	}

	return options
}

// WithSkipMempoolCheck validates against confirmed state only, ignoring the
// spent checker even when one is passed.
func WithSkipMempoolCheck(skip bool) Option {
	return func(o *Options) {
		o.skipMempoolCheck = skip
	}
}

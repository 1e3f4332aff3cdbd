package store

// Options is the configuration for a write.
type Options struct {
	snapshot    *Snapshot
	dryRun      bool
	beforeWrite func(path string) error
}

// Defaults returns the default write options.
func Defaults() *Options {
	return &Options{}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(o)
	}
	return *o
}

// DryRun reports whether writes are suppressed.
func (o *Options) DryRun() bool {
	return o.dryRun
}

// Option configures a write.
type Option func(*Options)

// WithSnapshot fails the write when the file changed since snap was taken.
func WithSnapshot(snap Snapshot) Option {
	return func(o *Options) {
		o.snapshot = &snap
	}
}

// WithDryRun reports the write instead of performing it.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.dryRun = dryRun
	}
}

// WithBeforeWrite runs fn just before the target is replaced, after the
// snapshot check. Backups hook in here.
func WithBeforeWrite(fn func(path string) error) Option {
	return func(o *Options) {
		o.beforeWrite = fn
	}
}

package merge

import "github.com/sirupsen/logrus"

// Options tune the merge of a site tree.
type Options struct {
	// When false, every level curve and material area of the root site must
	// lie inside the root site, out of its subsites.
	AllowOutside bool
	Logger       logrus.FieldLogger
}

type Option func(*Options)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = logger }
}

func AllowOutside(allow bool) Option {
	return func(o *Options) { o.AllowOutside = allow }
}

func newOptions(opts []Option) Options {
	o := Options{AllowOutside: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

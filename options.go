package xlsheet

// Options configures a Sheet.
type Options struct {
	formulaCacheSize int
}

func defaultOptions() *Options {
	return &Options{
		formulaCacheSize: 256,
	}
}

// Option is a functional option for NewSheet.
type Option func(*Options)

// WithFormulaCacheSize bounds the compiled-formula cache. Sizes below 1 are
// ignored.
func WithFormulaCacheSize(size int) Option {
	return func(o *Options) {
		if size >= 1 {
			o.formulaCacheSize = size
		}
	}
}

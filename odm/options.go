package odm

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultHost the host used when Open is given a bare database name.
const DefaultHost = "localhost:27017"

const defaultConnectTimeout = 30 * time.Second

// ErrInvalidArgument is wrapped by Open when an argument can not be interpreted.
var ErrInvalidArgument = errors.New("odm: invalid argument")

// Callback receives the outcome of an open attempt.
type Callback func(err error, conn *Connection)

// AsCallback reports whether v is callable as a Callback and converts it.
// Callback, func(error, *Connection) and func(error) are accepted.
func AsCallback(v any) (Callback, bool) {
	switch fn := v.(type) {
	case Callback:
		return fn, fn != nil
	case func(error, *Connection):
		return fn, fn != nil
	case func(error):
		if fn == nil {
			return nil, false
		}
		return func(err error, _ *Connection) { fn(err) }, true
	}
	return nil, false
}

// Options the connection options accepted by Connect, CreateConnection and Open.
type Options struct {
	// DB overrides the database named in the uri.
	DB         string
	User       string
	Pass       string
	AuthSource string
	// ConnectTimeout bounds the dial, 30s when zero.
	ConnectTimeout time.Duration
}

// IsZero reports whether no option is set.
func (o Options) IsZero() bool {
	return o == Options{}
}

// AsOptions converts Options, a non-nil *Options or a map with the keys
// db, user, pass, authSource and connectTimeoutMS.
func AsOptions(v any) (Options, bool) {
	switch o := v.(type) {
	case Options:
		return o, true
	case *Options:
		if o == nil {
			return Options{}, false
		}
		return *o, true
	case map[string]any:
		var opts Options
		opts.DB, _ = o["db"].(string)
		opts.User, _ = o["user"].(string)
		opts.Pass, _ = o["pass"].(string)
		opts.AuthSource, _ = o["authSource"].(string)
		switch ms := o["connectTimeoutMS"].(type) {
		case int:
			opts.ConnectTimeout = time.Duration(ms) * time.Millisecond
		case int64:
			opts.ConnectTimeout = time.Duration(ms) * time.Millisecond
		case float64:
			opts.ConnectTimeout = time.Duration(ms * float64(time.Millisecond))
		}
		return opts, true
	}
	return Options{}, false
}

// ModelOptions the per-definition model options.
type ModelOptions struct {
	Collection string
	SkipInit   bool
}

// ModelOption configures one model definition.
type ModelOption func(*ModelOptions)

// WithCollection overrides the derived collection name.
func WithCollection(name string) ModelOption {
	return func(o *ModelOptions) {
		o.Collection = name
	}
}

// SkipInit defines the model without scheduling its index build on open.
func SkipInit() ModelOption {
	return func(o *ModelOptions) {
		o.SkipInit = true
	}
}

// target where an Open call points to.
type target struct {
	uri     string
	host    string
	name    string
	options Options
}

func (t target) timeout() time.Duration {
	if t.options.ConnectTimeout > 0 {
		return t.options.ConnectTimeout
	}
	return defaultConnectTimeout
}

// parseOpenArgs interprets (location [, database] [, port] [, options] [, callback]).
// A location holding "://" is a uri; followed by a database it is a host;
// holding ":" or "/" it is host[:port][/database]; anything else is a
// database name on DefaultHost.
func parseOpenArgs(args []any) (target, Callback, error) {
	var cb Callback
	if n := len(args); n > 0 {
		if fn, ok := AsCallback(args[n-1]); ok {
			cb = fn
			args = args[:n-1]
		}
	}
	var (
		strs []string
		port int
		t    target
	)
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
		case string:
			strs = append(strs, v)
		case int:
			port = v
		default:
			opts, ok := AsOptions(v)
			if !ok {
				return t, cb, fmt.Errorf("%w: unexpected %T at position %d", ErrInvalidArgument, arg, i)
			}
			t.options = opts
		}
	}
	if len(strs) > 2 {
		return t, cb, fmt.Errorf("%w: too many string arguments", ErrInvalidArgument)
	}
	if len(strs) == 0 {
		return t, cb, fmt.Errorf("%w: missing connection location", ErrInvalidArgument)
	}

	location := strs[0]
	var u *url.URL
	switch {
	case strings.Contains(location, "://"):
		parsed, err := url.Parse(location)
		if err != nil {
			return t, cb, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		u = parsed
		if len(strs) == 2 {
			u.Path = "/" + strs[1]
		}
	case len(strs) == 2:
		u = &url.URL{Host: location, Path: "/" + strs[1]}
	case strings.ContainsAny(location, ":/"):
		host, db, _ := strings.Cut(location, "/")
		u = &url.URL{Host: host, Path: "/" + db}
	default:
		u = &url.URL{Host: DefaultHost, Path: "/" + location}
	}
	if u.Scheme == "" {
		u.Scheme = "mongodb"
	}
	if u.Host == "" {
		u.Host = DefaultHost
	}
	if port > 0 && u.Port() == "" {
		u.Host += ":" + strconv.Itoa(port)
	}
	if t.options.DB != "" {
		u.Path = "/" + t.options.DB
	}
	if t.options.User != "" && u.User == nil {
		u.User = url.UserPassword(t.options.User, t.options.Pass)
	}
	if t.options.AuthSource != "" {
		q := u.Query()
		q.Set("authSource", t.options.AuthSource)
		u.RawQuery = q.Encode()
	}
	t.uri = u.String()
	t.host = u.Host
	t.name = strings.TrimPrefix(u.Path, "/")
	return t, cb, nil
}

package lazy

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"
)

// Key names a slot holding a value of type T.
type Key[T any] struct {
	name string
}

func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string { return k.name }

func (k Key[T]) String() string { return k.name }

type factoryFunc func(*Context) (interface{}, error)

type slot struct {
	computed bool
	value    interface{}
	factory  factoryFunc
	running  chan struct{} // closed when the factory in flight returns
}

// Context is a bag of named, lazily computed values. A value is computed by its factory on
// first read and memoized; Set overrides it; a failed factory leaves the slot empty so that
// the next read tries again.
//
// A Context belongs to a single test chain. Its methods may be called from more than one
// goroutine. Factories run without the lock held so that they can read other slots; a
// concurrent read of a slot whose factory is running waits for it.
type Context struct {
	name     string
	parent   *Context
	slots    map[string]*slot
	children map[string]*Context
	logger   framework.Logger
	lock     sync.Mutex
}

type Option func(*Context)

// WithLogger sends a debug line to the logger whenever a slot is computed or overridden.
func WithLogger(logger framework.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(opts ...Option) *Context {
	c := &Context{
		slots:    make(map[string]*slot),
		children: make(map[string]*Context),
		logger:   framework.NullLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Path is the dotted name of this context relative to the root, or "" for the root.
func (c *Context) Path() string {
	if c.parent == nil || c.parent.Path() == "" {
		return c.name
	}
	return c.parent.Path() + "." + c.name
}

func (c *Context) Parent() *Context { return c.parent }

// Child returns the nested context with the given name, creating it if necessary.
func (c *Context) Child(name string) *Context {
	c.lock.Lock()
	defer c.lock.Unlock()
	if ch, ok := c.children[name]; ok {
		return ch
	}
	ch := New(WithLogger(c.logger))
	ch.name = name
	ch.parent = c
	c.children[name] = ch
	return ch
}

// Keys returns the names of all slots that have a value or a factory, sorted.
func (c *Context) Keys() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	ret := make([]string, 0, len(c.slots))
	for k := range c.slots {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// IsComputed reports whether the named slot currently holds a memoized value.
func (c *Context) IsComputed(name string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	s, ok := c.slots[name]
	return ok && s.computed
}

func (c *Context) qualified(name string) string {
	if p := c.Path(); p != "" {
		return p + "." + name
	}
	return name
}

func (c *Context) slotFor(name string) *slot {
	s, ok := c.slots[name]
	if !ok {
		s = &slot{}
		c.slots[name] = s
	}
	return s
}

func (c *Context) register(name string, f factoryFunc) {
	c.lock.Lock()
	c.slotFor(name).factory = f
	c.lock.Unlock()
}

func (c *Context) set(name string, value interface{}) {
	c.lock.Lock()
	s := c.slotFor(name)
	s.value = value
	s.computed = true
	c.lock.Unlock()
	c.logger.Printf("context: %s overridden", c.qualified(name))
}

func (c *Context) reset(name string) {
	c.lock.Lock()
	if s, ok := c.slots[name]; ok {
		s.computed = false
		s.value = nil
	}
	c.lock.Unlock()
}

func (c *Context) getOrCompute(name string, explicit factoryFunc) (interface{}, error) {
	c.lock.Lock()
	s := c.slotFor(name)
	for s.running != nil && !s.computed {
		running := s.running
		c.lock.Unlock()
		<-running
		c.lock.Lock()
	}
	if s.computed {
		v := s.value
		c.lock.Unlock()
		return v, nil
	}
	f := explicit
	if f == nil {
		f = s.factory
	}
	if f == nil {
		c.lock.Unlock()
		return nil, failure.New(failure.MissingContextValue,
			"no value or factory was provided for %q", c.qualified(name))
	}
	running := make(chan struct{})
	s.running = running
	c.lock.Unlock()

	v, err := f(c)

	c.lock.Lock()
	defer c.lock.Unlock()
	s.running = nil
	close(running)
	if err != nil {
		c.logger.Printf("context: computing %s failed: %s", c.qualified(name), err)
		return nil, fmt.Errorf("computing %q: %w", c.qualified(name), err)
	}
	if s.computed { // set while the factory ran
		return s.value, nil
	}
	s.value = v
	s.computed = true
	c.logger.Printf("context: %s computed", c.qualified(name))
	return v, nil
}

// Register installs the default factory for a key. It does not discard a memoized value.
func Register[T any](c *Context, key Key[T], factory func(*Context) (T, error)) {
	c.register(key.name, wrap(factory))
}

// GetOrCompute returns the memoized value for key, computing it first if necessary. The
// explicit factory takes precedence over a registered one; either may be nil.
func GetOrCompute[T any](c *Context, key Key[T], factory func(*Context) (T, error)) (T, error) {
	var zero T
	raw, err := c.getOrCompute(key.name, wrap(factory))
	if err != nil {
		return zero, err
	}
	return cast[T](c, key.name, raw)
}

// Get returns the value for key using its registered factory.
func Get[T any](c *Context, key Key[T]) (T, error) {
	return GetOrCompute(c, key, nil)
}

// Set overrides the value for key; factories for it will not run until Reset.
func Set[T any](c *Context, key Key[T], value T) {
	c.set(key.name, value)
}

// Reset forgets the memoized value for key so that the next read runs the factory again.
func Reset[T any](c *Context, key Key[T]) {
	c.reset(key.name)
}

func wrap[T any](factory func(*Context) (T, error)) factoryFunc {
	if factory == nil {
		return nil
	}
	return func(c *Context) (interface{}, error) {
		return factory(c)
	}
}

func cast[T any](c *Context, name string, raw interface{}) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, failure.New(failure.MissingContextValue,
			"value for %q is %s, not %s", c.qualified(name), failure.TypeName(raw), reflect.TypeOf(&zero).Elem())
	}
	return v, nil
}

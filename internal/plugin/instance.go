package plugin

import (
	"errors"
	"fmt"
	"sync"
)

// Metadata keys stamped during specialization.
const (
	// MetadataBasisResourceID carries the owning basis resource id.
	MetadataBasisResourceID = "basis_resource_id"
	// MetadataServiceEndpoint carries the state service endpoint.
	MetadataServiceEndpoint = "vagrant_service_endpoint"
)

// ErrNotSpecializable indicates the component value does not accept request
// metadata.
var ErrNotSpecializable = errors.New("component is not specializable")

// RequestMetadataSetter is implemented by component values that accept
// request-scoped metadata before dispatch.
type RequestMetadataSetter interface {
	SetRequestMetadata(key, value string)
}

// Instance is a constructed component value paired with its close hook.
// Instances are owned by the scope that constructed them; callers of factory
// lookups only borrow references.
type Instance struct {
	// Component is the constructed plugin value satisfying the capability
	// set for Kind.
	Component interface{}

	// Kind is the component kind this instance was constructed for.
	Kind ComponentKind

	// Name is the factory name the instance was constructed from.
	Name string

	closeOnce sync.Once
	closer    func() error
	closeErr  error
}

// NewInstance creates an Instance for the given component value. If closer
// is nil and the value implements io.Closer-style Close, that is used.
func NewInstance(kind ComponentKind, name string, component interface{}, closer func() error) *Instance {
	if closer == nil {
		if c, ok := component.(interface{ Close() error }); ok {
			closer = c.Close
		}
	}
	return &Instance{
		Component: component,
		Kind:      kind,
		Name:      name,
		closer:    closer,
	}
}

// Close releases the instance's resources. It runs the close hook exactly
// once; later calls return the first result.
func (i *Instance) Close() error {
	i.closeOnce.Do(func() {
		if i.closer != nil {
			i.closeErr = i.closer()
		}
	})
	return i.closeErr
}

// Specialize stamps request metadata onto the instance's component value.
// Components that do not accept metadata fail with ErrNotSpecializable.
func Specialize(inst *Instance, metadata map[string]string) error {
	setter, ok := inst.Component.(RequestMetadataSetter)
	if !ok {
		return fmt.Errorf("%w: %s/%s (%T)", ErrNotSpecializable, inst.Kind, inst.Name, inst.Component)
	}
	for k, v := range metadata {
		setter.SetRequestMetadata(k, v)
	}
	return nil
}

// RequestMetadata is an embeddable helper giving a component value the
// specialization capability. The zero value is ready to use.
type RequestMetadata struct {
	mu       sync.Mutex
	metadata map[string]string
}

// SetRequestMetadata records a metadata key/value pair.
func (m *RequestMetadata) SetRequestMetadata(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metadata == nil {
		m.metadata = make(map[string]string)
	}
	m.metadata[key] = value
}

// RequestMetadataValue returns a recorded metadata value.
func (m *RequestMetadata) RequestMetadataValue(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.metadata[key]
	return v, ok
}

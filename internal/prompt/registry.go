package prompt

import (
	"errors"
	"sync"

	"github.com/molubot/molubot/internal/store"
)

// DefaultName is the prompt every registry starts with. It can be
// updated but never removed or orphaned as the current selection.
const DefaultName = "default"

// ErrOutOfRange is returned for temperature values outside [0, 1].
var ErrOutOfRange = errors.New("prompt: temperature out of range")

// Item is one listed prompt. Current marks the active selection.
type Item struct {
	Name    string
	Current bool
}

// Registry holds named system prompts, the current selection, and the
// generation temperature. State is in-memory and process-wide.
type Registry struct {
	mu          sync.Mutex
	prompts     map[string]string
	order       []string
	current     string
	temperature float64
}

func New(defaultText string, temperature float64) *Registry {
	return &Registry{
		prompts:     map[string]string{DefaultName: defaultText},
		order:       []string{DefaultName},
		current:     DefaultName,
		temperature: temperature,
	}
}

// List returns every prompt name in insertion order.
func (r *Registry) List() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]Item, 0, len(r.order))
	for _, name := range r.order {
		items = append(items, Item{Name: name, Current: name == r.current})
	}
	return items
}

// Get returns the prompt text for name.
func (r *Registry) Get(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.prompts[name]
	if !ok {
		return "", store.ErrNotFound
	}
	return text, nil
}

// Add registers a new prompt. Adding an existing name fails.
func (r *Registry) Add(name, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; ok {
		return store.ErrExists
	}
	r.prompts[name] = text
	r.order = append(r.order, name)
	return nil
}

// Update replaces the text of an existing prompt.
func (r *Registry) Update(name, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; !ok {
		return store.ErrNotFound
	}
	r.prompts[name] = text
	return nil
}

// Select makes name the current prompt.
func (r *Registry) Select(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; !ok {
		return store.ErrNotFound
	}
	r.current = name
	return nil
}

// Current returns the active prompt's name and text.
func (r *Registry) Current() (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.prompts[r.current]
}

// Temperature returns the generation temperature.
func (r *Registry) Temperature() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.temperature
}

// SetTemperature updates the generation temperature. Values outside
// [0, 1] are rejected and the stored value is untouched.
func (r *Registry) SetTemperature(value float64) error {
	if value < 0.0 || value > 1.0 {
		return ErrOutOfRange
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.temperature = value
	return nil
}

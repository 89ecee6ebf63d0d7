package anim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/milk9111/arenapreview/atlas"
)

// CharacterSource resolves character types to atlas descriptors.
type CharacterSource interface {
	Lookup(characterType string) (*atlas.Descriptor, error)
}

// ImageLoader loads source images. Implementations must be safe for
// concurrent use.
type ImageLoader interface {
	LoadImage(ctx context.Context, ref string) (image.Image, error)
}

type cacheKey struct {
	character string
	source    string
}

// Registry builds AnimationSets for character types. The optional cache is
// keyed by (character, source) and only skips repeated work; results are the
// same with or without it.
type Registry struct {
	loader ImageLoader

	mu     sync.Mutex
	source CharacterSource
	cache  map[cacheKey]*AnimationSet
	// gen changes whenever the cache is reset. A Build that started under an
	// older generation never stores its result.
	gen uint64
}

type RegistryOption func(*Registry)

// WithCache enables the AnimationSet cache.
func WithCache() RegistryOption {
	return func(r *Registry) {
		r.cache = make(map[cacheKey]*AnimationSet)
	}
}

func NewRegistry(source CharacterSource, loader ImageLoader, opts ...RegistryOption) *Registry {
	r := &Registry{source: source, loader: loader}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init enables the cache, starting empty.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]*AnimationSet)
	r.gen++
}

// Clear drops every cached set. The cache stays enabled.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *Registry) reset() {
	if r.cache != nil {
		r.cache = make(map[cacheKey]*AnimationSet)
	}
	r.gen++
}

// Cached returns the number of cached sets.
func (r *Registry) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// SetSource swaps the character source and clears the cache.
func (r *Registry) SetSource(source CharacterSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = source
	r.reset()
}

// Descriptor returns the descriptor for a character type.
func (r *Registry) Descriptor(characterType string) (*atlas.Descriptor, error) {
	desc, _, err := r.descriptor(characterType)
	return desc, err
}

// descriptor resolves characterType against the current source and reports
// the cache generation the lookup belongs to.
func (r *Registry) descriptor(characterType string) (*atlas.Descriptor, uint64, error) {
	r.mu.Lock()
	source, gen := r.source, r.gen
	r.mu.Unlock()
	if source == nil {
		return nil, gen, fmt.Errorf("%w: %q", ErrUnknownCharacter, characterType)
	}
	desc, err := source.Lookup(characterType)
	return desc, gen, err
}

// Build loads the character's images and slices every clip. It fails with
// ErrUnknownCharacter, ErrLoadFailure, or the context's error.
func (r *Registry) Build(ctx context.Context, characterType string) (*AnimationSet, error) {
	desc, gen, err := r.descriptor(characterType)
	if err != nil {
		return nil, err
	}

	key := cacheKey{character: characterType, source: desc.Source}
	if set, ok := r.cached(key, gen); ok {
		return set, nil
	}

	images := make(map[string]image.Image)
	sizes := make(map[string]image.Point)
	for _, ref := range desc.Refs() {
		img, err := r.loader.LoadImage(ctx, ref)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, ref, err)
		}
		if img == nil {
			return nil, fmt.Errorf("%w: %s: no image", ErrLoadFailure, ref)
		}
		size := img.Bounds().Size()
		if size.X <= 0 || size.Y <= 0 {
			return nil, fmt.Errorf("%w: %s: zero-size image", ErrLoadFailure, ref)
		}
		images[ref] = img
		sizes[ref] = size
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sizeOf := func(ref string) image.Point { return sizes[ref] }
	set := newAnimationSet(characterType, images)
	for _, name := range desc.Clips.Names() {
		frames, err := SliceFunc(desc, name, sizeOf)
		if err != nil {
			return nil, err
		}
		set.add(name, frames)
	}
	layout, err := SliceFunc(desc, WholeSheet, sizeOf)
	if err != nil {
		return nil, err
	}
	set.layout = layout

	r.store(key, gen, set)
	return set, nil
}

func (r *Registry) cached(key cacheKey, gen uint64) (*AnimationSet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil || r.gen != gen {
		return nil, false
	}
	set, ok := r.cache[key]
	return set, ok
}

func (r *Registry) store(key cacheKey, gen uint64, set *AnimationSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache != nil && r.gen == gen {
		r.cache[key] = set
	}
}

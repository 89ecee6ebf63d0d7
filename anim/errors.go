package anim

import (
	"errors"

	"github.com/milk9111/arenapreview/atlas"
)

var (
	// ErrLoadFailure means a source image could not be fetched or decoded.
	ErrLoadFailure = errors.New("anim: load failure")
	// ErrUnknownClip means the clip name is not declared for the character.
	ErrUnknownClip = errors.New("anim: unknown clip")
	// ErrUnknownCharacter means the character type is not in the catalog.
	ErrUnknownCharacter = atlas.ErrUnknownCharacter
)

package assets

import "errors"

// CompanionExtension is the extension of the layered image file
// implicitly associated with every mesh file.
const CompanionExtension = "aseprite"

// ErrPathTooShort is returned when a mesh path cannot carry a trailing
// 3-character extension, so no companion path can be derived from it.
var ErrPathTooShort = errors.New("assets: path too short to derive companion file")

// TexturePathFor derives the companion image path for a mesh path by
// replacing its trailing 3-character extension. It is pure string
// surgery; whether the result exists on disk is the caller's concern.
func TexturePathFor(meshPath string) (string, error) {
	if len(meshPath) < 3 {
		return "", ErrPathTooShort
	}
	return meshPath[:len(meshPath)-3] + CompanionExtension, nil
}

package renderer

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/triangle/internal/config"
	"github.com/vkngwrapper/triangle/internal/shader"
)

// Shaders holds the SPIR-V words for the two pipeline stages.
type Shaders struct {
	Vertex   []uint32
	Fragment []uint32
}

// LoadShaders reads both stages from disk. It runs before any window or
// graphics object exists, so a missing file leaves nothing to clean up.
func LoadShaders(cfg config.Shaders) (Shaders, error) {
	vert, err := shader.Load(cfg.Vertex)
	if err != nil {
		return Shaders{}, assetError(err, "vertex")
	}

	frag, err := shader.Load(cfg.Fragment)
	if err != nil {
		return Shaders{}, assetError(err, "fragment")
	}

	return Shaders{Vertex: vert, Fragment: frag}, nil
}

func assetError(err error, stage string) error {
	err = markf(ErrAsset, err, "failed to load %s shader", stage)
	if errors.Is(err, os.ErrNotExist) {
		err = errors.WithHint(err, "compile the shaders with: go generate ./shaders (requires glslc)")
	}
	return err
}
